package argo

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginRejectsIncompleteCredentials(t *testing.T) {
	client, err := NewClient(Options{SchoolCode: "SS12345", Username: "student"})
	require.NoError(t, err)

	err = client.Login(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestCategoryCallsRequireLogin(t *testing.T) {
	portal := newFakePortal(t)
	client := newPortalClient(t, portal)

	var authErr *AuthError

	_, err := client.FetchDashboard(context.Background())
	require.ErrorAs(t, err, &authErr)

	_, err = client.GetCurriculum(context.Background())
	require.ErrorAs(t, err, &authErr)

	require.EqualValues(t, 0, portal.requests.Load())
}

func TestLoginOpensApiSession(t *testing.T) {
	portal := newFakePortal(t)
	client := newPortalClient(t, portal)

	err := client.Login(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-1", client.token.AccessToken)
	require.Equal(t, "session-1", client.authToken)

	portal.mu.Lock()
	defer portal.mu.Unlock()
	require.Equal(t, "code-1", portal.tokenForm.Get("code"))
	require.Equal(t, "authorization_code", portal.tokenForm.Get("grant_type"))
	require.Equal(t, defaultRedirectUri, portal.tokenForm.Get("redirect_uri"))
	require.Len(t, portal.tokenForm.Get("code_verifier"), 64)
}

func TestFetchDashboard(t *testing.T) {
	portal := newFakePortal(t)
	portal.handle("/appfamiglia/dashboard/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-auth-token") != "session-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"dati": [{
			"voti": [{"pk": "g1", "desMateria": "Matematica", "decVoto": 8.5}],
			"promemoria": [{"pkPromemoria": "p1", "desAnnotazioni": "Riunione"}],
			"registro": [],
			"appello": [],
			"bacheca": []
		}]}}`))
	})
	client := newPortalClient(t, portal)

	err := client.Login(context.Background())
	require.NoError(t, err)

	dash, err := client.FetchDashboard(context.Background())
	require.NoError(t, err)
	require.Same(t, dash, client.Dashboard())

	require.Len(t, dash.Voti, 1)
	require.Equal(t, "Matematica", dash.Voti[0].Text("desMateria"))
	require.Equal(t, 8.5, dash.Voti[0].Number("decVoto"))
	require.Len(t, dash.Promemoria, 1)
	require.Empty(t, dash.Registro)
}

func TestFetchExtrasSettlesAllCalls(t *testing.T) {
	portal := newFakePortal(t)
	portal.handle("/appfamiglia/dettaglioprofilo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"alunno": {"nominativo": "Mario Rossi"}, "desScuola": "Liceo"}}`))
	})
	portal.handle("/appfamiglia/orario-giorno", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"materia": "Storia", "ora": 1}]}`))
	})
	portal.handle("/appfamiglia/ricevimenti", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"docente": "Bianchi"}]}`))
	})
	// corsirecupero and votiscrutinio stay unregistered and 404, the
	// surviving calls must still land
	portal.handle("/appfamiglia/dashboard/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"dati": [{"voti": [], "promemoria": [], "registro": [], "appello": [], "bacheca": []}]}}`))
	})
	client := newPortalClient(t, portal)

	err := client.Login(context.Background())
	require.NoError(t, err)
	_, err = client.FetchDashboard(context.Background())
	require.NoError(t, err)

	client.FetchExtras(context.Background())

	dash := client.Dashboard()
	require.Equal(t, "Liceo", dash.Profilo.Text("desScuola"))
	require.Len(t, dash.Orario, 1)
	require.Len(t, dash.Ricevimenti, 1)
	require.Empty(t, dash.CorsiRecupero)
	require.Empty(t, dash.VotiScrutinio)
}

func TestLogoutClearsSession(t *testing.T) {
	portal := newFakePortal(t)
	portal.handle("/appfamiglia/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": []}`))
	})
	client := newPortalClient(t, portal)

	err := client.Login(context.Background())
	require.NoError(t, err)

	err = client.Logout(context.Background())
	require.NoError(t, err)
	require.Nil(t, client.token)
	require.Nil(t, client.Dashboard())

	var authErr *AuthError
	_, err = client.FetchDashboard(context.Background())
	require.ErrorAs(t, err, &authErr)
}
