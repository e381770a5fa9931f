package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogoutFlow(t *testing.T) {
	s := newTestStack(t)

	token, _ := s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Username string   `json:"username"`
			FullName string   `json:"fullName"`
			Roles    []string `json:"roles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Data.Username)
	assert.Equal(t, "Test User", resp.Data.FullName)
	// Registration assigns the student role.
	assert.Equal(t, []string{"student"}, resp.Data.Roles)

	w = s.request(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The token is dead the moment logout returns.
	w = s.request(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestStack(t)

	// Short password.
	w := s.request(t, http.MethodPost, "/api/register", "", gin.H{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "short",
		"confirmPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Mismatched confirmation.
	w = s.request(t, http.MethodPost, "/api/register", "", gin.H{
		"username":        "alice",
		"email":           "alice@example.com",
		"password":        "password123",
		"confirmPassword": "password456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	s := newTestStack(t)
	s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPost, "/api/register", "", gin.H{
		"username":        "alice",
		"email":           "other@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.request(t, http.MethodPost, "/api/register", "", gin.H{
		"username":        "someone",
		"email":           "alice@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestStack(t)
	s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	s := newTestStack(t)
	s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	// Without remember the cookie is a browser-session cookie.
	assert.Equal(t, 0, cookies[0].MaxAge)
}

func TestLoginRememberExtendsCookie(t *testing.T) {
	s := newTestStack(t)
	s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "password123",
		"remember": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 720*3600, cookies[0].MaxAge)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPut, "/api/user/profile", token, gin.H{
		"firstName": "Alicia",
		"lastName":  "Jones",
		"email":     "alicia@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Another account's email is a conflict.
	s.registerAndLogin(t, "bob")
	w = s.request(t, http.MethodPut, "/api/user/profile", token, gin.H{
		"firstName": "Alicia",
		"lastName":  "Jones",
		"email":     "bob@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestChangePasswordFlow(t *testing.T) {
	s := newTestStack(t)
	token, _ := s.registerAndLogin(t, "alice")

	w := s.request(t, http.MethodPut, "/api/user/password", token, gin.H{
		"currentPassword": "nottherightone",
		"newPassword":     "newpassword1",
		"confirmPassword": "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.request(t, http.MethodPut, "/api/user/password", token, gin.H{
		"currentPassword": "password123",
		"newPassword":     "newpassword1",
		"confirmPassword": "newpassword1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.request(t, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
