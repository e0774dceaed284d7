package auth

import (
	"net/http"
	"time"

	"atelier_server/lib"

	"github.com/MonkyMars/gecho"
)

const csrfTokenTTL = 24 * time.Hour

// HandleCSRF mints a fresh CSRF token, sets it as a JS-readable cookie and
// echoes it in the body for clients that prefer reading it there.
func (ar *AuthRoutesManager) HandleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := lib.GenerateRandomToken()
	if err != nil {
		ar.logger.Error("Could not generate CSRF token", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to generate CSRF token"), gecho.Send())
		return
	}

	lib.SetCSRFCookie(token, time.Now().Add(csrfTokenTTL), w)

	gecho.Success(w,
		gecho.WithData(map[string]string{"csrf_token": token}),
		gecho.Send(),
	)
}
