package argo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"argosync/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/argo")

type Options struct {
	// authorization endpoint of the identity provider
	AuthorizeUrl string
	TokenUrl     string
	// base url of the fixed sso login/consent endpoints
	SSOBaseUrl string
	// base url of the family api
	APIBaseUrl string
	ClientId   string

	SchoolCode string
	Username   string
	Password   string

	// dumps every http exchange to disk when set
	Debug restyutil.InstrumentOutput
}

func (o Options) withDefaults() Options {
	if o.AuthorizeUrl == "" {
		o.AuthorizeUrl = defaultAuthorizeUrl
	}
	if o.TokenUrl == "" {
		o.TokenUrl = defaultTokenUrl
	}
	if o.SSOBaseUrl == "" {
		o.SSOBaseUrl = defaultSSOBaseUrl
	}
	if o.APIBaseUrl == "" {
		o.APIBaseUrl = defaultAPIBaseUrl
	}
	if o.ClientId == "" {
		o.ClientId = defaultClientId
	}
	return o
}

// Token is the bearer minted at the code exchange.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IdToken      string `json:"id_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// Client owns one portal session: the cookie jar shared by the sso
// chain and the api calls, the bearer token and the dashboard
// snapshot. A Client is either fully unauthenticated or logged in,
// category calls on an unauthenticated client return AuthError.
type Client struct {
	opts Options
	jar  *cookiejar.Jar
	// api mode, follows redirects, caches reads
	http *resty.Client
	// login mode, same jar, redirects disabled
	sso *resty.Client

	token     *Token
	authToken string
	dashboard *Dashboard
}

func NewClient(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{opts: opts, jar: jar}
	c.http = newRestyClient(jar, modeAPI)
	c.http.SetBaseURL(opts.APIBaseUrl)
	c.sso = newRestyClient(jar, modeSSO)

	if opts.Debug != nil {
		restyutil.DumpClient(c.http, opts.Debug)
		restyutil.DumpClient(c.sso, opts.Debug)
	}
	return c, nil
}

// Login runs the full sso chain, exchanges the resulting code and
// opens the api session.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if c.opts.SchoolCode == "" || c.opts.Username == "" || c.opts.Password == "" {
		err := &AuthError{Reason: "school code, username or password missing"}
		span.SetStatus(codes.Error, err.Reason)
		return err
	}

	link, err := GenerateLoginLink(c.opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate login link")
		return err
	}

	code, err := c.getCode(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to obtain authorization code")
		return err
	}

	token, err := c.exchangeCode(ctx, link, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to exchange authorization code")
		return err
	}
	c.token = token

	err = c.apiLogin(ctx)
	if err != nil {
		c.token = nil
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open api session")
		return err
	}
	return nil
}

func (c *Client) exchangeCode(ctx context.Context, link LoginLink, code string) (*Token, error) {
	ctx, span := tracer.Start(ctx, "client:exchangeCode")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"code":          code,
			"grant_type":    "authorization_code",
			"redirect_uri":  defaultRedirectUri,
			"code_verifier": link.CodeVerifier,
			"client_id":     c.opts.ClientId,
		}).
		Post(c.opts.TokenUrl)
	if err != nil {
		return nil, &TransportError{Cause: err}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d", res.StatusCode())
	}

	var token Token
	err = json.Unmarshal(res.Body(), &token)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response carried no access_token")
	}
	return &token, nil
}

func (c *Client) apiLogin(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:apiLogin")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("authorization", fmt.Sprintf("Bearer %s", c.token.AccessToken)).
		SetHeader("x-cod-min", c.opts.SchoolCode).
		SetBody(map[string]any{
			"lista-opzioni-notifiche": map[string]any{},
			"lista-x-auth-token":      []any{},
			"clientID":                c.opts.ClientId,
		}).
		Post("/login")
	if err != nil {
		return &TransportError{Cause: err}
	}
	if res.StatusCode() >= 400 {
		return &AuthError{Reason: fmt.Sprintf("api login returned %d", res.StatusCode())}
	}

	var body struct {
		Data []struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return err
	}
	if len(body.Data) == 0 || body.Data[0].Token == "" {
		return &AuthError{Reason: "api login returned no session token"}
	}

	c.authToken = body.Data[0].Token
	c.http.SetHeader("x-auth-token", c.authToken)
	c.http.SetHeader("authorization", fmt.Sprintf("Bearer %s", c.token.AccessToken))
	return nil
}

func (c *Client) requireAuth() error {
	if c.authToken == "" {
		return &AuthError{Reason: "client is not logged in"}
	}
	return nil
}

// Logout invalidates the session server side and clears local state,
// the client can Login again afterwards.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	if err := c.requireAuth(); err != nil {
		return err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post("/logout")
	if err != nil {
		return &TransportError{Cause: err}
	}
	if res.StatusCode() >= 400 {
		return fmt.Errorf("logout returned %d", res.StatusCode())
	}

	c.authToken = ""
	c.token = nil
	c.dashboard = nil
	c.http.Header.Del("x-auth-token")
	c.http.Header.Del("Authorization")
	return nil
}
