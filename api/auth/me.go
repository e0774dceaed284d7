package auth

import (
	"net/http"

	"atelier_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleMe returns the currently authenticated user, refreshing the access
// token from the refresh cookie when the access cookie is gone or stale.
func (ar *AuthRoutesManager) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := lib.ExtractClaims(r, ar.authService.GetAccessTokenSecret())
	if err == nil {
		user, err := ar.authService.GetUserByID(claims.Sub)
		if err != nil || user == nil {
			ar.logger.Warn("Failed to load user for valid access token", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
			gecho.Unauthorized(w, gecho.WithMessage("Not logged in"), gecho.Send())
			return
		}

		user.PasswordHash = ""
		gecho.Success(w, gecho.WithData(user), gecho.Send())
		return
	}

	// Access token missing or invalid, try the refresh token
	refreshToken, err := lib.GetCookieValue(lib.RefreshCookieName, r)
	if err != nil {
		gecho.Unauthorized(w, gecho.WithMessage("Not logged in"), gecho.Send())
		return
	}

	authResponse, err := ar.authService.RefreshAccessToken(refreshToken)
	if err != nil {
		ar.logger.Debug("Failed to refresh access token", gecho.Field("error", err))
		gecho.Unauthorized(w, gecho.WithMessage("Not logged in"), gecho.Send())
		return
	}

	lib.SetCookie(lib.AccessCookieName, authResponse.AccessToken, ar.authService.GetAccessTokenExpiration(), w)
	lib.SetCookie(lib.RefreshCookieName, authResponse.RefreshToken, ar.authService.GetRefreshTokenExpiration(), w)

	authResponse.User.PasswordHash = ""
	gecho.Success(w, gecho.WithData(authResponse.User), gecho.Send())
}
