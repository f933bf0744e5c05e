package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princinho/storefront/tokens"
)

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestCookieBinder_SetSession(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieBinder("production").SetSession(rec, tokens.Pair{AccessToken: "a.b.c", RefreshToken: "d.e.f"})

	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)

	access := cookies[AccessTokenCookie]
	require.NotNil(t, access)
	assert.Equal(t, "a.b.c", access.Value)
	assert.Equal(t, 900, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)
	assert.Equal(t, "/", access.Path)

	refresh := cookies[RefreshTokenCookie]
	require.NotNil(t, refresh)
	assert.Equal(t, "d.e.f", refresh.Value)
	assert.Equal(t, 7*24*60*60, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
}

func TestCookieBinder_InsecureInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieBinder("development").SetAccessToken(rec, "tok")

	c := cookiesByName(rec)[AccessTokenCookie]
	require.NotNil(t, c)
	assert.False(t, c.Secure)
	assert.True(t, c.HttpOnly)
}

func TestCookieBinder_ClearMatchesSetAttributes(t *testing.T) {
	b := NewCookieBinder("production")

	set := httptest.NewRecorder()
	b.SetSession(set, tokens.Pair{AccessToken: "a", RefreshToken: "r"})
	cleared := httptest.NewRecorder()
	b.Clear(cleared)

	before, after := cookiesByName(set), cookiesByName(cleared)
	require.Len(t, after, 2)
	for name, c := range after {
		assert.Empty(t, c.Value, name)
		assert.Equal(t, -1, c.MaxAge, name)
		assert.Equal(t, before[name].Path, c.Path, name)
		assert.Equal(t, before[name].Secure, c.Secure, name)
		assert.Equal(t, before[name].HttpOnly, c.HttpOnly, name)
		assert.Equal(t, before[name].SameSite, c.SameSite, name)
	}
}
