package auth

import (
	"net/http"

	"atelier_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleLogout blacklists the current access token and clears both session
// cookies. Requests without a usable token still succeed: the caller's goal
// is to be logged out, and they already are.
func (ar *AuthRoutesManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	accessToken, err := lib.GetCookieValue(lib.AccessCookieName, r)
	if err != nil {
		gecho.Success(w, gecho.WithMessage("No access token found"), gecho.Send())
		return
	}

	claims, err := lib.ParseToken(accessToken, ar.cfg.Auth.AccessTokenSecret)
	if err != nil {
		ar.logger.Error("Unparseable access token on logout", gecho.Field("error", err))
		gecho.Success(w, gecho.WithMessage("Invalid access token"), gecho.Send())
		return
	}

	if err := ar.cacheService.BlacklistToken(claims.Jti, claims.Exp); err != nil {
		ar.logger.Error("Could not blacklist access token", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to logout"), gecho.Send())
		return
	}

	// Drop the cached profile too so a stale copy can't outlive the session.
	if err = ar.cacheService.DeleteUserFromCache(claims.Sub); err != nil {
		ar.logger.Error("Could not evict cached user on logout", gecho.Field("error", err), gecho.Field("user_id", claims.Sub))
	}

	lib.ClearCookie(lib.AccessCookieName, w)
	lib.ClearCookie(lib.RefreshCookieName, w)

	gecho.Success(w, gecho.WithMessage("Logged out successfully"), gecho.Send())
}
