package argo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"argosync/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// fakePortal serves the whole consent-redirect chain on one httptest
// server. The break* toggles make a single hop misbehave so the tests
// can check that the chain dies there and requests no further hop.
type fakePortal struct {
	server   *httptest.Server
	mux      *http.ServeMux
	requests atomic.Int64

	breakLoginRedirect   bool
	breakLoginChallenge  bool
	breakLoginPost       bool
	breakConsentRedirect bool
	breakCode            bool

	mu          sync.Mutex
	loginForm   url.Values
	consentForm url.Values
	tokenForm   url.Values
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()
	t.Cleanup(telemetry.SetupForTesting(t, "scrapers/argo"))
	p := &fakePortal{}

	mux := http.NewServeMux()
	p.mux = mux
	mux.HandleFunc("/oauth2/auth", func(w http.ResponseWriter, r *http.Request) {
		if p.breakLoginRedirect {
			w.WriteHeader(http.StatusOK)
			return
		}
		location := p.server.URL + "/auth/sso/login-page"
		if !p.breakLoginChallenge {
			location += "?login_challenge=challenge-login-1"
		}
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/auth/sso/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		p.mu.Lock()
		p.loginForm = r.PostForm
		p.mu.Unlock()
		if p.breakLoginPost {
			// the portal answers wrong credentials with the login page
			// again instead of a redirect
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Location", p.server.URL+"/oauth2/resume?code_challenge=challenge-code-1")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/oauth2/resume", func(w http.ResponseWriter, r *http.Request) {
		location := p.server.URL + "/auth/sso/consent-page"
		if !p.breakConsentRedirect {
			location += "?consent_challenge=challenge-consent-1"
		}
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/auth/sso/consent", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		p.mu.Lock()
		p.consentForm = r.PostForm
		p.mu.Unlock()
		w.Header().Set("Location", p.server.URL+"/oauth2/verify?consent_verifier=verifier-1")
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/oauth2/verify", func(w http.ResponseWriter, r *http.Request) {
		location := defaultRedirectUri + "?state=state-1"
		if !p.breakCode {
			location += "&code=code-1"
		}
		w.Header().Set("Location", location)
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		p.mu.Lock()
		p.tokenForm = r.PostForm
		p.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "access-1",
			"refresh_token": "refresh-1",
			"id_token": "id-1",
			"expires_in": 3600,
			"scope": "openid offline profile user.roles argo",
			"token_type": "bearer"
		}`))
	})
	mux.HandleFunc("/appfamiglia/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-cod-min") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"token": "session-1"}]}`))
	})

	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requests.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.server.Close)
	return p
}

// handle registers an extra endpoint, the api tests plug their
// category responses in through this.
func (p *fakePortal) handle(pattern string, handler http.HandlerFunc) {
	p.mux.HandleFunc(pattern, handler)
}

func (p *fakePortal) options() Options {
	return Options{
		AuthorizeUrl: p.server.URL + "/oauth2/auth",
		TokenUrl:     p.server.URL + "/oauth2/token",
		SSOBaseUrl:   p.server.URL + "/auth/sso",
		APIBaseUrl:   p.server.URL + "/appfamiglia",
		SchoolCode:   "SS12345",
		Username:     "student",
		Password:     "hunter2",
	}
}

func newPortalClient(t *testing.T, portal *fakePortal) *Client {
	t.Helper()
	client, err := NewClient(portal.options())
	require.NoError(t, err)
	return client
}

func TestGetCodeWalksTheWholeChain(t *testing.T) {
	portal := newFakePortal(t)
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	code, err := client.getCode(context.Background(), link)
	require.NoError(t, err)
	require.Equal(t, "code-1", code)
	require.EqualValues(t, 5, portal.requests.Load())

	portal.mu.Lock()
	defer portal.mu.Unlock()
	require.Equal(t, "challenge-login-1", portal.loginForm.Get("challenge"))
	require.Equal(t, "SS12345", portal.loginForm.Get("famiglia_customer_code"))
	require.Equal(t, "student", portal.loginForm.Get("username"))
	require.Equal(t, "hunter2", portal.loginForm.Get("password"))
	require.Equal(t, "true", portal.loginForm.Get("login"))

	require.Equal(t, "challenge-consent-1", portal.consentForm.Get("challenge"))
	require.Equal(t, "Accetta", portal.consentForm.Get("consent"))
	require.Equal(t, grantScopes, portal.consentForm["grant_scope"])
}

func TestGetCodeFailsFastOnMissingLoginRedirect(t *testing.T) {
	portal := newFakePortal(t)
	portal.breakLoginRedirect = true
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	_, err = client.getCode(context.Background(), link)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, 1, protoErr.Hop)
	require.Equal(t, "Invalid login url", protoErr.Reason)
	require.EqualValues(t, 1, portal.requests.Load())
}

func TestGetCodeFailsFastOnMissingLoginChallenge(t *testing.T) {
	portal := newFakePortal(t)
	portal.breakLoginChallenge = true
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	_, err = client.getCode(context.Background(), link)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, "Invalid login challenge", protoErr.Reason)
	require.EqualValues(t, 1, portal.requests.Load())
}

func TestGetCodeFailsFastOnRejectedCredentials(t *testing.T) {
	portal := newFakePortal(t)
	portal.breakLoginPost = true
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	_, err = client.getCode(context.Background(), link)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, 2, protoErr.Hop)
	require.Equal(t, "Invalid login redirect", protoErr.Reason)
	require.EqualValues(t, 2, portal.requests.Load())
}

func TestGetCodeFailsFastOnMissingConsentChallenge(t *testing.T) {
	portal := newFakePortal(t)
	portal.breakConsentRedirect = true
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	_, err = client.getCode(context.Background(), link)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, 3, protoErr.Hop)
	require.Equal(t, "Invalid consent challenge", protoErr.Reason)
	require.EqualValues(t, 3, portal.requests.Load())
}

func TestGetCodeFailsOnMissingCode(t *testing.T) {
	portal := newFakePortal(t)
	portal.breakCode = true
	client := newPortalClient(t, portal)

	link, err := GenerateLoginLink(client.opts)
	require.NoError(t, err)

	_, err = client.getCode(context.Background(), link)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.Equal(t, 6, protoErr.Hop)
	require.Equal(t, "Invalid login code", protoErr.Reason)
	require.EqualValues(t, 5, portal.requests.Load())
}

func TestGenerateLoginLink(t *testing.T) {
	link, err := GenerateLoginLink(Options{}.withDefaults())
	require.NoError(t, err)
	require.Len(t, link.CodeVerifier, 64)
	require.Len(t, link.State, 22)

	parsed, err := url.Parse(link.Url)
	require.NoError(t, err)
	query := parsed.Query()
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, "login", query.Get("prompt"))
	require.Equal(t, "S256", query.Get("code_challenge_method"))
	require.Equal(t, link.State, query.Get("state"))
	require.Equal(t, link.Challenge, query.Get("code_challenge"))
	require.Equal(t, defaultClientId, query.Get("client_id"))
	require.Equal(t, defaultRedirectUri, query.Get("redirect_uri"))
	require.Equal(t, "openid offline profile user.roles argo", query.Get("scope"))
}
