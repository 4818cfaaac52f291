package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUserIDsPartialMatch(t *testing.T) {
	var gotAuth string
	var gotEmails []string
	useFakeDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotEmails = r.URL.Query()["email_address"]
		w.Write([]byte(`{"data":[{"id":"user_2"},{"id":"user_3"}]}`))
	})

	userIds, err := ResolveUserIDs(context.Background(), []string{
		"bob@example.com",
		"carol@example.com",
		"nobody@example.com",
	})
	require.NoError(t, err)

	// Unmatched addresses are silently omitted; a shorter result is
	// not an error.
	assert.ElementsMatch(t, []string{"user_2", "user_3"}, userIds)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Len(t, gotEmails, 3)
}

func TestResolveUserIDsEmptyInput(t *testing.T) {
	userIds, err := ResolveUserIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, userIds)
}

func TestResolveUserIDsRemoteFailure(t *testing.T) {
	useFakeDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := ResolveUserIDs(context.Background(), []string{"bob@example.com"})
	var remoteErr *RemoteServiceError
	assert.ErrorAs(t, err, &remoteErr)
}
