package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*GitHubClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewGitHubClient("test-token")
	client.BaseURL = server.URL
	return client, server
}

func TestGetRepository(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"id": 1, "name": "widgets", "language": "Python",
			"clone_url": "https://example.com/acme/widgets.git",
			"owner": {"login": "acme"}, "archived": false
		}`))
	})
	defer server.Close()

	repo, err := client.GetRepository(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, "widgets", repo.Name)
	assert.Equal(t, "Python", repo.Language)
	assert.Equal(t, "https://example.com/acme/widgets.git", repo.CloneURL)
	assert.Equal(t, "acme", repo.Owner.Login)
}

func TestGetRepositoryErrorStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.GetRepository(context.Background(), "acme", "gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGetCommit(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/commits/abc123", r.URL.Path)
		w.Write([]byte(`{
			"sha": "abc123",
			"author": {"login": "alice"},
			"committer": {"login": "bob"},
			"parents": [{"sha": "p1"}]
		}`))
	})
	defer server.Close()

	commit, err := client.GetCommit(context.Background(), "acme", "widgets", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", commit.SHA)
	assert.Equal(t, "alice", commit.Author.Login)
	assert.Equal(t, "bob", commit.Committer.Login)
	require.Len(t, commit.Parents, 1)
	assert.Equal(t, "p1", commit.Parents[0].SHA)
}

func TestListMaintainersFiltersByPermission(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/collaborators", r.URL.Path)
		w.Write([]byte(`[
			{"login": "alice", "permissions": {"admin": true}},
			{"login": "bob", "permissions": {"maintain": true}},
			{"login": "carol", "permissions": {"push": true}}
		]`))
	})
	defer server.Close()

	maintainers, err := client.ListMaintainers(context.Background(), "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, maintainers)
}

func TestCreateCommitCommentAnchored(t *testing.T) {
	var got map[string]interface{}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/widgets/commits/abc123/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42}`))
	})
	defer server.Close()

	err := client.CreateCommitComment(context.Background(), "acme", "widgets", "abc123", "hello", "f.py", 4)
	require.NoError(t, err)
	assert.Equal(t, "hello", got["body"])
	assert.Equal(t, "f.py", got["path"])
	assert.Equal(t, float64(4), got["position"])
}

func TestCreateCommitCommentPlain(t *testing.T) {
	var got map[string]interface{}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 43}`))
	})
	defer server.Close()

	err := client.CreateCommitComment(context.Background(), "acme", "widgets", "abc123", "hello", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", got["body"])
	_, hasPath := got["path"]
	assert.False(t, hasPath, "plain comments carry no diff anchor")
}

func TestCreateCommentReaction(t *testing.T) {
	var got map[string]string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/comments/42/reactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1}`))
	})
	defer server.Close()

	err := client.CreateCommentReaction(context.Background(), "acme", "widgets", 42, "+1")
	require.NoError(t, err)
	assert.Equal(t, "+1", got["content"])
}
