package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/hxblog/lib/graphql"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		moderateToken = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "hxblog version "+version+"\n", out)
}

func TestModerate(t *testing.T) {
	var got struct {
		Variables map[string]any `json:"variables"`
	}
	var token string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get(graphql.HeaderName)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"blog": map[string]any{
			"moderateComment": map[string]any{"uuid": "c-1", "status": "approved", "message": "done"},
		}}})
	}))
	t.Cleanup(backend.Close)
	t.Setenv("GRAPHQL_ENDPOINT", backend.URL)

	out, err := execute(t, "moderate", "c-1", "Approved", "--token", "cli-token")

	require.NoError(t, err)
	assert.Equal(t, "comment c-1 is now approved: done\n", out)
	assert.Equal(t, "cli-token", token)
	assert.Equal(t, "c-1", got.Variables["commentId"])
	assert.Equal(t, "approved", got.Variables["status"])
}

func TestModerateRejectsUnknownStatus(t *testing.T) {
	_, err := execute(t, "moderate", "c-1", "pending")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid status "pending"`)
}

func TestModerateRequiresArgs(t *testing.T) {
	_, err := execute(t, "moderate", "c-1")

	require.Error(t, err)
}
