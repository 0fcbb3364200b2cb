package sparql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/stevehedden/kgcatalog/pkg/errors"
)

const resultsFixture = `{
  "head": {"vars": ["item", "itemLabel", "officialWebsites"]},
  "results": {"bindings": [
    {
      "item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q324254"},
      "itemLabel": {"type": "literal", "value": "ontology"},
      "officialWebsites": {"type": "literal", "value": "https://example.org"}
    },
    {
      "item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q1469824"},
      "itemLabel": {"type": "literal", "value": "controlled vocabulary"}
    }
  ]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		Endpoint:  srv.URL,
		UserAgent: "kgcatalog-test/0.1 (contact: dev@example.org)",
		Timeout:   2 * time.Second,
	})
	require.NoError(t, err)
	return client, srv
}

func TestSelectDecodesBindings(t *testing.T) {
	var gotAccept, gotAgent, gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", resultsMediaType)
		w.Write([]byte(resultsFixture)) //nolint:errcheck
	})

	rows, err := client.Select(context.Background(), OntologyVocabularyQuery(500))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, resultsMediaType, gotAccept)
	require.Contains(t, gotAgent, "kgcatalog-test")
	require.Contains(t, gotQuery, "wd:Q1469824")

	require.Equal(t, "ontology", rows[0]["itemLabel"])
	require.Equal(t, "https://example.org", rows[0]["officialWebsites"])
	_, hasWebsite := rows[1]["officialWebsites"]
	require.False(t, hasWebsite)
}

func TestSelectRetriesOnceOn429(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(resultsFixture)) //nolint:errcheck
	})

	rows, err := client.Select(context.Background(), "SELECT ?item WHERE {}")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 2, calls)
}

func TestSelectSurfacesQueryErrorOnServerFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "MALFORMED QUERY", http.StatusBadRequest)
	})

	_, err := client.Select(context.Background(), "not sparql")
	require.Error(t, err)
	require.True(t, errors.Is(err, apperrors.ErrBadQueryResponse))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "QUERY_ERROR", appErr.Code)
}

func TestSelectSurfacesQueryErrorOnMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>")) //nolint:errcheck
	})

	_, err := client.Select(context.Background(), "SELECT ?item WHERE {}")
	require.True(t, errors.Is(err, apperrors.ErrBadQueryResponse))
}

func TestSelectTimeoutIsNetworkError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(resultsFixture)) //nolint:errcheck
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Select(ctx, "SELECT ?item WHERE {}")
	require.True(t, errors.Is(err, apperrors.ErrEndpointUnreachable))
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{UserAgent: "x"})
	require.Error(t, err)

	_, err = NewClient(Config{Endpoint: "https://query.wikidata.org/sparql"})
	require.Error(t, err)
}

func TestQueriesEmbedLimit(t *testing.T) {
	q := SoftwareQuery(250)
	require.Contains(t, q, "LIMIT 250")
	require.Contains(t, q, "wd:Q124653107")
	require.False(t, strings.Contains(q, "%d"))
}
