package auth

import (
	"errors"
	"net/http"

	"atelier_server/lib"
	"atelier_server/services"
	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
)

// HandleNewPassword completes the password reset flow: the submitted token
// is consumed and the replacement password hash installed in one pass. The
// token is only deleted once the new hash is in place.
func (ar *AuthRoutesManager) HandleNewPassword(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.NewPasswordRequest](r)
	if err != nil {
		ar.logger.Warn("Failed to extract and validate request body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check your new password"), gecho.WithData(err), gecho.Send())
		return
	}

	passwordHash, err := ar.authService.HashPassword(body.Password, services.DefaultParams)
	if err != nil {
		ar.logger.Error("Failed to hash new password", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Something went wrong"), gecho.Send())
		return
	}

	email, err := ar.tokenService.ConsumeReset(r.Context(), body.Token, passwordHash)
	if err != nil {
		userMessage := lib.GetUserMessage(err)

		switch {
		case errors.Is(err, lib.ErrMissingToken), errors.Is(err, lib.ErrTokenInvalid), errors.Is(err, lib.ErrTokenExpired):
			ar.logger.Warn("Password reset rejected", gecho.Field("error", err))
			gecho.BadRequest(w, gecho.WithMessage(userMessage), gecho.Send())
		case errors.Is(err, lib.ErrAccountNotFound):
			gecho.NotFound(w, gecho.WithMessage("Email does not exist"), gecho.Send())
		default:
			ar.logger.Error("Password reset failed", gecho.Field("error", err))
			gecho.InternalServerError(w, gecho.WithMessage(userMessage), gecho.Send())
		}
		return
	}

	ar.logger.Info("Password updated via reset token", gecho.Field("email", email))

	gecho.Success(w,
		gecho.WithMessage("Password updated!"),
		gecho.Send(),
	)
}
