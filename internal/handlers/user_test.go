package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/collab-docs-api/internal/constants"
	"github.com/yukikurage/collab-docs-api/internal/dto"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
	"github.com/yukikurage/collab-docs-api/internal/middleware"
	"github.com/yukikurage/collab-docs-api/internal/models"
)

func TestUserHandler_Register(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})

	w := env.do(t, http.MethodPost, "/api/user/register", "", gin.H{
		"fullname": "Ada Lovelace",
		"email":    "Ada@Example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user dto.UserDTO
	decode(t, w, &user)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = env.do(t, http.MethodPost, "/api/user/register", "", gin.H{
		"fullname": "Ada Again",
		"email":    "ada@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_RegisterInvalidInput(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})

	bodies := []gin.H{
		{"email": "a@b.c", "password": "password123"},
		{"fullname": "A", "email": "nope", "password": "password123"},
		{"fullname": "A", "email": "a@b.c", "password": "short"},
	}
	for _, body := range bodies {
		w := env.do(t, http.MethodPost, "/api/user/register", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUserHandler_LoginUnknownUser(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})

	w := env.do(t, http.MethodPost, "/api/user/login", "", gin.H{
		"email":    "missing@x.com",
		"password": "pw",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	decode(t, w, &apiErr)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, apiErr.Code)
	assert.NotContains(t, w.Body.String(), `"token"`)
	assert.Empty(t, w.Result().Cookies())
}

func TestUserHandler_MeRequiresAuth(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})

	w := env.do(t, http.MethodGet, "/api/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	id, token := env.signup(t, "ada")
	w = env.do(t, http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user dto.UserDTO
	decode(t, w, &user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "ada", user.Fullname)
}

func TestUserHandler_Update(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})
	_, token := env.signup(t, "ada")
	env.signup(t, "bob")

	w := env.do(t, http.MethodPut, "/api/user/update", token, gin.H{"fullname": "Ada King"})
	require.Equal(t, http.StatusOK, w.Code)
	var user dto.UserDTO
	decode(t, w, &user)
	assert.Equal(t, "Ada King", user.Fullname)
	assert.Equal(t, "ada@example.com", user.Email)

	w = env.do(t, http.MethodPut, "/api/user/update", token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/api/user/update", token, gin.H{"password": "tiny"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_LogoutRevokesToken(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})
	_, token := env.signup(t, "ada")

	w := env.do(t, http.MethodPost, "/api/user/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/user/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_DeleteCascadesAndEndsSession(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{})
	_, adaToken := env.signup(t, "ada")
	_, bobToken := env.signup(t, "bob")

	adaSpace := env.createWorkspace(t, adaToken, "ada space")
	env.createDocument(t, bobToken, adaSpace.ID, "bob in ada space")

	w := env.do(t, http.MethodDelete, "/api/user/delete", adaToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/user/me", adaToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var workspaces, documents int64
	require.NoError(t, env.db.Model(&models.Workspace{}).Count(&workspaces).Error)
	require.NoError(t, env.db.Model(&models.Document{}).Count(&documents).Error)
	assert.Zero(t, workspaces)
	assert.Zero(t, documents)

	w = env.do(t, http.MethodGet, "/api/user/me", bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_CookieTransportSetsHttpOnlyCookie(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{transport: middleware.CookieTransport{Name: "token"}})

	w := env.do(t, http.MethodPost, "/api/user/register", "", gin.H{
		"fullname": "Ada",
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/user/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.LoginResponse
	decode(t, w, &response)
	assert.Empty(t, response.Token)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserHandler_SessionTransport(t *testing.T) {
	env := setupAPITestEnv(t, apiTestOptions{
		transport:    middleware.SessionTransport{},
		sessionStore: cookie.NewStore([]byte("secret")),
	})

	w := env.do(t, http.MethodPost, "/api/user/register", "", gin.H{
		"fullname": "Ada",
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/user/login", "", gin.H{
		"email":    "ada@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, constants.SessionCookieName, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// the old cookie still carries the token, which is now revoked
	req = httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
