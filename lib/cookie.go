package lib

import (
	"net/http"
	"time"

	"atelier_server/config"
)

const (
	AccessCookieName  = "atelier_access"
	RefreshCookieName = "atelier_refresh"
	CSRFCookieName    = "csrf"
)

// cookieDomain is applied in production so cookies flow between the www and
// api subdomains.
const cookieDomain = ".atelier-market.com"

// cookiePolicy returns the attributes that differ between environments.
// Cross-site cookies (SameSite=None) require Secure, so both flip together.
func cookiePolicy() (sameSite http.SameSite, secure bool, domain string) {
	if config.IsProduction() {
		return http.SameSiteNoneMode, true, cookieDomain
	}
	return http.SameSiteLaxMode, false, ""
}

// SetCookie writes an HttpOnly session cookie.
func SetCookie(key, val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookiePolicy()

	http.SetCookie(w, &http.Cookie{
		Name:     key,
		Value:    val,
		Expires:  expiry,
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	})
}

func GetCookieValue(key string, r *http.Request) (string, error) {
	cookie, err := r.Cookie(key)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ClearCookie expires the cookie in the browser.
func ClearCookie(key string, w http.ResponseWriter) {
	sameSite, secure, domain := cookiePolicy()

	http.SetCookie(w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: true,
	})
}

// SetCSRFCookie writes the CSRF token cookie. Unlike the session cookies it
// must stay readable from JavaScript, since the frontend echoes it back in a
// header.
func SetCSRFCookie(val string, expiry time.Time, w http.ResponseWriter) {
	sameSite, secure, domain := cookiePolicy()

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    val,
		Expires:  expiry,
		MaxAge:   int(time.Until(expiry).Seconds()),
		Path:     "/",
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		HttpOnly: false,
	})
}
