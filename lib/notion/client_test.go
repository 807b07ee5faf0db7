package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func pageWithTitle(property, value string) string {
	return fmt.Sprintf(
		`{"id": "page-%s", "properties": {%q: {"type": "title", "title": [{"plain_text": %q}]}}}`,
		value, property, value,
	)
}

func TestPropertyValuesPaginatesTheWholeDatabase(t *testing.T) {
	var queries atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/databases/db-1/query", r.URL.Path)
		require.Equal(t, "Bearer secret-1", r.Header.Get("Authorization"))
		require.Equal(t, apiVersion, r.Header.Get("Notion-Version"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, pageSize, req.PageSize)

		w.Header().Set("Content-Type", "application/json")
		switch queries.Add(1) {
		case 1:
			require.Empty(t, req.StartCursor)
			fmt.Fprintf(w, `{"results": [%s], "has_more": true, "next_cursor": "c2"}`,
				pageWithTitle("Chiave", "a"))
		case 2:
			require.Equal(t, "c2", req.StartCursor)
			fmt.Fprintf(w, `{"results": [%s, %s], "has_more": true, "next_cursor": "c3"}`,
				pageWithTitle("Chiave", "b"), pageWithTitle("Chiave", "c"))
		default:
			require.Equal(t, "c3", req.StartCursor)
			fmt.Fprintf(w, `{"results": [%s], "has_more": false, "next_cursor": null}`,
				pageWithTitle("Chiave", "d"))
		}
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})
	values, err := client.PropertyValues(context.Background(), "db-1", "Chiave")
	require.NoError(t, err)
	require.EqualValues(t, 3, queries.Load())
	require.Equal(t, map[string]struct{}{
		"a": {}, "b": {}, "c": {}, "d": {},
	}, values)
}

func TestCreatePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pages", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"parent": {"database_id": "db-1"},
			"properties": {
				"Chiave": {"title": [{"text": {"content": "g1"}}]},
				"Materia": {"select": {"name": "Matematica"}},
				"Voto": {"number": 8.5},
				"Data": {"date": {"start": "2026-03-02"}},
				"Giustificata": {"checkbox": true},
				"Note": {"rich_text": [{"text": {"content": "compito in classe"}}]}
			}
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "page-new", "properties": {}}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})
	page, err := client.CreatePage(context.Background(), CreatePageRequest{
		Parent: Parent{DatabaseId: "db-1"},
		Properties: map[string]Property{
			"Chiave":       Title("g1"),
			"Materia":      Select("Matematica"),
			"Voto":         Number(8.5),
			"Data":         DateStart("2026-03-02"),
			"Giustificata": Checkbox(true),
			"Note":         Text("compito in classe"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "page-new", page.Id)
}

func TestCreatePageWithChildren(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"parent": {"page_id": "parent-1"},
			"properties": {
				"title": {"title": [{"text": {"content": "Riepilogo"}}]}
			},
			"children": [
				{"object": "block", "type": "paragraph",
				 "paragraph": {"rich_text": [{"text": {"content": "Prima riga"}}]}}
			]
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "page-summary", "properties": {}}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})
	page, err := client.CreatePage(context.Background(), CreatePageRequest{
		Parent:     Parent{PageId: "parent-1"},
		Properties: map[string]Property{"title": Title("Riepilogo")},
		Children:   []Block{ParagraphBlock("Prima riga")},
	})
	require.NoError(t, err)
	require.Equal(t, "page-summary", page.Id)
}

func TestRetriesRateLimits(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status": 429, "code": "rate_limited", "message": "slow down"}`))
			return
		}
		w.Write([]byte(`{"results": [], "has_more": false}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})
	pages, cursor, err := client.QueryDatabase(context.Background(), "db-1", "")
	require.NoError(t, err)
	require.Empty(t, pages)
	require.Empty(t, cursor)
	require.EqualValues(t, 3, hits.Load())
}

func TestSurfacesApiErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status": 404, "code": "object_not_found", "message": "Could not find database"}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})
	_, _, err := client.QueryDatabase(context.Background(), "db-missing", "")
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "object_not_found", apiErr.Code)
}

func TestSearchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "page", req.Filter.Value)
		require.Equal(t, "object", req.Filter.Property)

		w.Header().Set("Content-Type", "application/json")
		if req.Query == "Scuola" {
			w.Write([]byte(`{"results": [{"id": "page-scuola", "properties": {}}]}`))
			return
		}
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(Options{Token: "secret-1", BaseUrl: server.URL})

	page, err := client.SearchPage(context.Background(), "Scuola")
	require.NoError(t, err)
	require.Equal(t, "page-scuola", page.Id)

	_, err = client.SearchPage(context.Background(), "Sconosciuta")
	require.ErrorContains(t, err, "no page found")
}

func TestPropertyPlainText(t *testing.T) {
	require.Equal(t, "abc", Property{
		Title: []RichText{{PlainText: "ab"}, {Text: &TextContent{Content: "c"}}},
	}.PlainText())
	require.Equal(t, "nota", Property{
		RichText: []RichText{{Text: &TextContent{Content: "nota"}}},
	}.PlainText())
	require.Equal(t, "", Property{}.PlainText())
}
