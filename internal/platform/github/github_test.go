package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyscout/polyscout/internal/domain"
)

func newTestStore(handler http.HandlerFunc) (*ContentsStore, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(ClientConfig{APIHost: srv.URL, Token: "test-token"})
	return NewContentsStore(client, "acme", "signals"), srv
}

func TestContentsStorePut(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody putRequest

	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	defer srv.Close()

	err := store.Put(context.Background(), "data/trends/2026-03-05/scanner-2026-3-5-09_07.json", []byte(`[]`))
	require.NoError(t, err)

	assert.Equal(t, "/repos/acme/signals/contents/data/trends/2026-03-05/scanner-2026-3-5-09_07.json", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "Snapshot: data/trends/2026-03-05/scanner-2026-3-5-09_07.json", gotBody.Message)

	decoded, err := base64.StdEncoding.DecodeString(gotBody.Content)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(decoded))
}

func TestContentsStoreGet(t *testing.T) {
	t.Run("inline content with wrapped base64", func(t *testing.T) {
		content := base64.StdEncoding.EncodeToString([]byte(`[{"slug":"fed-march"}]`))
		wrapped := content[:10] + "\n" + content[10:] + "\n"

		store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(fileEntry{
				Name:     "x.json",
				Content:  wrapped,
				Encoding: "base64",
			})
		})
		defer srv.Close()

		data, err := store.Get(context.Background(), "data/strategy/x.json")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"slug":"fed-march"}]`, string(data))
	})

	t.Run("missing path", func(t *testing.T) {
		store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		defer srv.Close()

		_, err := store.Get(context.Background(), "data/strategy/missing.json")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestContentsStoreList(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		// trailing slash trimmed before hitting the API
		assert.Equal(t, "/repos/acme/signals/contents/data/strategy/2026-03-10", r.URL.Path)
		w.Write([]byte(`[
			{"name":"targeter-2026-3-10-09_00.json","path":"data/strategy/2026-03-10/targeter-2026-3-10-09_00.json","size":10,"type":"file"},
			{"name":"subdir","path":"data/strategy/2026-03-10/subdir","type":"dir"}
		]`))
	})
	defer srv.Close()

	infos, err := store.List(context.Background(), "data/strategy/2026-03-10/")
	require.NoError(t, err)
	require.Len(t, infos, 1, "directories are skipped")
	assert.Equal(t, "data/strategy/2026-03-10/targeter-2026-3-10-09_00.json", infos[0].Path)
}

func TestIssueSourceOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/queue/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		w.Write([]byte(`[
			{"number": 7, "title": "[poly] Fed decision in {month}?", "state": "open"},
			{"number": 8, "title": "[POLY] Bitcoin all time high?", "state": "open"},
			{"number": 9, "title": "unrelated chore", "state": "open"},
			{"number": 10, "title": "[poly] fix the pipeline", "state": "open", "pull_request": {}},
			{"number": 11, "title": "[poly]", "state": "open"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIHost: srv.URL})
	source := NewIssueSource(client, "acme", "queue", "[poly]")

	directives, err := source.Open(context.Background())
	require.NoError(t, err)

	require.Len(t, directives, 2)
	assert.Equal(t, domain.Directive{Number: 7, Title: "Fed decision in {month}?"}, directives[0])
	assert.Equal(t, domain.Directive{Number: 8, Title: "Bitcoin all time high?"}, directives[1], "tag matched case-insensitively")
}

func TestIssueSourceNoTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"number": 1, "title": "Anything goes", "state": "open"}]`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{APIHost: srv.URL})
	source := NewIssueSource(client, "acme", "queue", "")

	directives, err := source.Open(context.Background())
	require.NoError(t, err)
	require.Len(t, directives, 1)
	assert.Equal(t, "Anything goes", directives[0].Title)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "data/trends/2026-03-05/file.json", escapePath("data/trends/2026-03-05/file.json"))
	assert.Equal(t, "a%20b/c", escapePath("a b/c"))
}
