package auth

import (
	"errors"
	"fmt"
	"net/http"

	"atelier_server/lib"

	"github.com/MonkyMars/gecho"
)

// HandleNewVerification consumes an email verification token from the mail
// deep link and redirects to the frontend. A missing token parameter is a
// request error and never reaches the token store.
func (ar *AuthRoutesManager) HandleNewVerification(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		gecho.BadRequest(w, gecho.WithMessage("Missing token"), gecho.Send())
		return
	}

	email, err := ar.tokenService.ConsumeVerification(r.Context(), token)
	if err != nil {
		ar.logger.Warn("Email verification failed", gecho.Field("error", err))
		http.Redirect(w, r, getRedirectURL(ar.cfg.Server.FrontendURL, verificationStatus(err)), http.StatusSeeOther)
		return
	}

	ar.logger.Info("Email verified successfully", gecho.Field("email", email))

	// Redirect to frontend with success (user needs to log in manually)
	http.Redirect(w, r, getRedirectURL(ar.cfg.Server.FrontendURL, "ok"), http.StatusSeeOther)
}

func verificationStatus(err error) string {
	switch {
	case errors.Is(err, lib.ErrTokenExpired):
		return "expired"
	case errors.Is(err, lib.ErrTokenInvalid):
		return "invalid"
	default:
		return "err"
	}
}

func getRedirectURL(cfgURL, status string) string {
	return fmt.Sprintf("%s/email-verified?status=%s", cfgURL, status)
}
