package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRequiresAuth(t *testing.T) {
	_, router := setupTest(t, nil)

	w := perform(router, newRequest(t, http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := newRequest(t, http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w = perform(router, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	_, router := setupTest(t, nil)
	token := registerAndLogin(t, router)

	// Never saved: an empty profile, not an error.
	req := newRequest(t, http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := perform(router, req)
	require.Equal(t, http.StatusOK, w.Code)

	var profile ProfileRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Empty(t, profile.Username)

	req = newRequest(t, http.MethodPost, "/api/profile",
		[]byte(`{"username":"alice","email":"alice@example.com","bio":"hi","avatar":"/thumbnails/me.jpg"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w = perform(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req = newRequest(t, http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = perform(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "hi", profile.Bio)

	// Saving again replaces the single profile row.
	req = newRequest(t, http.MethodPost, "/api/profile",
		[]byte(`{"username":"alice","email":"alice@example.com","bio":"updated"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w = perform(router, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = newRequest(t, http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = perform(router, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "updated", profile.Bio)
	assert.Empty(t, profile.Avatar, "save replaces all fields")
}

func TestSaveProfileValidation(t *testing.T) {
	_, router := setupTest(t, nil)
	token := registerAndLogin(t, router)

	req := newRequest(t, http.MethodPost, "/api/profile", []byte(`{"bio":"no name"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w := perform(router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
