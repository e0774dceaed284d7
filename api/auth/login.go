package auth

import (
	"fmt"
	"net/http"

	"atelier_server/lib"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleLogin checks credentials, requires a verified email and hands out the
// access/refresh cookie pair.
func (ar *AuthRoutesManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.AuthRequest](r)
	if err != nil {
		ar.logger.Warn("Malformed login payload", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check your login information and try again"), gecho.Send())
		return
	}

	if body.Email == "" || body.Password == "" {
		ar.logger.Warn("Login attempt with empty credentials")
		gecho.BadRequest(w, gecho.WithMessage("Email and password are required"), gecho.Send())
		return
	}

	user, err := ar.authService.Login(r.Context(), body)
	if err != nil {
		// One message for every failure cause; callers learn nothing about
		// which part was wrong.
		ar.logger.Warn("Login rejected", gecho.Field("error", err))
		gecho.Unauthorized(w, gecho.WithMessage("Invalid credentials"), gecho.Send())
		return
	}

	if !user.EmailVerified {
		ar.logger.Warn("Login before email verification", gecho.Field("userID", user.Id))
		gecho.Forbidden(w, gecho.WithMessage(fmt.Sprintf("Please verify your email address (%s) before logging in", user.Email)), gecho.Send())
		return
	}

	accessToken, accessErr := ar.authService.GenerateAccessToken(user)
	refreshToken, refreshErr := ar.authService.GenerateRefreshToken(user)
	if accessErr != nil || refreshErr != nil {
		ar.logger.Error("Could not mint session tokens",
			gecho.Field("accessError", accessErr),
			gecho.Field("refreshError", refreshErr),
			gecho.Field("userID", user.Id),
		)
		gecho.InternalServerError(w, gecho.WithMessage("Unable to complete login. Please try again"), gecho.Send())
		return
	}

	lib.SetCookie(lib.RefreshCookieName, refreshToken, ar.authService.GetRefreshTokenExpiration(), w)
	lib.SetCookie(lib.AccessCookieName, accessToken, ar.authService.GetAccessTokenExpiration(), w)

	// Last-login is bookkeeping; don't hold the response for it.
	go func() {
		if err := ar.authService.UpdateLastLogin(user.Id); err != nil {
			ar.logger.Error("Failed to record last login", gecho.Field("error", err), gecho.Field("userID", user.Id))
		}
	}()

	user.PasswordHash = ""

	gecho.Success(w,
		gecho.WithMessage("Login successful"),
		gecho.WithData(user),
		gecho.Send(),
	)
}
