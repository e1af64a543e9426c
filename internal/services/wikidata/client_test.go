package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sparqlServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("query"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestClient_LookupTicker(t *testing.T) {
	server := sparqlServer(t, `{
		"results": {"bindings": [
			{"ticker": {"value": "pfe"}, "exchangeLabel": {"value": "New York Stock Exchange"}}
		]}
	}`, http.StatusOK)
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))
	match, err := client.LookupTicker(context.Background(), "Pfizer")
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "PFE", match.Ticker)
	assert.Equal(t, "Pfizer", match.Company)
	assert.Equal(t, "New York Stock Exchange", match.Exchange)
}

func TestClient_NoMatch(t *testing.T) {
	server := sparqlServer(t, `{"results": {"bindings": []}}`, http.StatusOK)
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))
	match, err := client.LookupTicker(context.Background(), "Nonexistent Biotech")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestClient_ServerError(t *testing.T) {
	server := sparqlServer(t, "service unavailable", http.StatusServiceUnavailable)
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))
	_, err := client.LookupTicker(context.Background(), "Pfizer")
	assert.Error(t, err)
}

func TestClient_MalformedResponse(t *testing.T) {
	server := sparqlServer(t, "<html>not json</html>", http.StatusOK)
	defer server.Close()

	client := NewClient(WithEndpoint(server.URL))
	_, err := client.LookupTicker(context.Background(), "Pfizer")
	assert.Error(t, err)
}
