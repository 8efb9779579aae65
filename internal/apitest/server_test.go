package apitest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CountRequests(t *testing.T) {
	srv := New(t)
	u := srv.AddUser("Ama", "ama@example.com", "secret1", false)

	req, err := http.NewRequest(http.MethodGet, srv.BaseURL()+"/users/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+srv.Token(u.ID))
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/users/me"))
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/users/me"))
	assert.Zero(t, srv.CountRequests(http.MethodPost, "/users/me"))
	assert.Zero(t, srv.CountRequests(http.MethodGet, "/notifications"))
}

func TestServer_FailNextIsOneShot(t *testing.T) {
	srv := New(t)
	srv.FailNext(http.MethodGet, "/incidents", http.StatusServiceUnavailable, "down")

	get := func() int {
		resp, err := srv.Client().Get(srv.BaseURL() + "/incidents")
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusServiceUnavailable, get())
	assert.Equal(t, http.StatusUnauthorized, get())
	assert.Equal(t, 2, srv.CountRequests(http.MethodGet, "/incidents"))
}
