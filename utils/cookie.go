package utils

import (
	"net/http"

	"github.com/princinho/storefront/config"
	"github.com/princinho/storefront/tokens"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieBinder writes session tokens as HttpOnly, SameSite=Strict cookies.
// Set and Clear share the same attributes so browsers match them.
type CookieBinder struct {
	Secure bool
	Path   string
}

// NewCookieBinder enables the Secure flag unless env is a local one.
func NewCookieBinder(env string) *CookieBinder {
	return &CookieBinder{Secure: !config.IsDevelopmentEnv(env), Path: "/"}
}

func (b *CookieBinder) SetSession(w http.ResponseWriter, pair tokens.Pair) {
	b.SetAccessToken(w, pair.AccessToken)
	b.SetRefreshToken(w, pair.RefreshToken)
}

func (b *CookieBinder) SetAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, b.cookie(AccessTokenCookie, token, int(tokens.AccessTTL.Seconds())))
}

func (b *CookieBinder) SetRefreshToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, b.cookie(RefreshTokenCookie, token, int(tokens.RefreshTTL.Seconds())))
}

// Clear expires both session cookies.
func (b *CookieBinder) Clear(w http.ResponseWriter) {
	http.SetCookie(w, b.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, b.cookie(RefreshTokenCookie, "", -1))
}

func (b *CookieBinder) cookie(name, value string, maxAge int) *http.Cookie {
	path := b.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   b.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
