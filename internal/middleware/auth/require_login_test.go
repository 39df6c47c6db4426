package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhtran205/fashion-shop/internal/models"
	"github.com/minhtran205/fashion-shop/internal/testutil"
)

var testSecret = []byte("test-secret")

func signTestToken(t *testing.T, userID uint, ttl time.Duration, secret []byte) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func runProtected(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		user := CurrentUser(c)
		require.NotNil(t, user)
		return c.JSON(http.StatusOK, user)
	})
	return rec, handler(c)
}

func TestRequireLogin_MissingOrMalformedToken(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	mw := RequireLogin(db, testSecret)

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		_, err := runProtected(t, mw, header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for %q", header)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	}
}

func TestRequireLogin_ExpiredToken(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "u", "u@example.com", models.RoleUser)
	mw := RequireLogin(db, testSecret)

	token := signTestToken(t, user.ID, -time.Minute, testSecret)
	_, err := runProtected(t, mw, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLogin_WrongSecret(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "u", "u@example.com", models.RoleUser)
	mw := RequireLogin(db, testSecret)

	token := signTestToken(t, user.ID, time.Hour, []byte("other-secret"))
	_, err := runProtected(t, mw, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLogin_DeletedUser(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	mw := RequireLogin(db, testSecret)

	// valid token whose subject was never created
	token := signTestToken(t, 12345, time.Hour, testSecret)
	_, err := runProtected(t, mw, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLogin_BlockedUser(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "u", "u@example.com", models.RoleUser)
	require.NoError(t, db.Model(user).Update("status", models.UserStatusBlocked).Error)
	mw := RequireLogin(db, testSecret)

	token := signTestToken(t, user.ID, time.Hour, testSecret)
	_, err := runProtected(t, mw, "Bearer "+token)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLogin_ResolvesUser(t *testing.T) {
	t.Parallel()

	db := testutil.NewTestDB(t)
	user := testutil.CreateUser(t, db, "u", "u@example.com", models.RoleUser)
	mw := RequireLogin(db, testSecret)

	token := signTestToken(t, user.ID, time.Hour, testSecret)
	rec, err := runProtected(t, mw, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	// no resolved user at all
	err := AdminOnly(next)(newCtx())
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)

	// plain user
	c := newCtx()
	SetCurrentUser(c, &models.User{ID: 1, Role: models.RoleUser})
	err = AdminOnly(next)(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)

	// admin passes through
	c = newCtx()
	SetCurrentUser(c, &models.User{ID: 2, Role: models.RoleAdmin})
	require.NoError(t, AdminOnly(next)(c))
}
