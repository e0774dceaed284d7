package auth

import (
	"net/http"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

// HandleReset starts the password reset flow: issues a reset token for the
// account and mails the new-password deep link. A send failure is reported
// to the caller but the issued token stays valid, so a later resend reuses
// the flow without penalty.
func (ar *AuthRoutesManager) HandleReset(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.ResetRequest](r)
	if err != nil {
		ar.logger.Warn("Failed to extract and validate request body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Invalid email"), gecho.WithData(err), gecho.Send())
		return
	}

	user, err := ar.accounts.FindByEmail(r.Context(), body.Email)
	if err != nil {
		ar.logger.Error("Failed to look up account for reset", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Something went wrong"), gecho.Send())
		return
	}
	if user == nil {
		gecho.NotFound(w, gecho.WithMessage("Email not found"), gecho.Send())
		return
	}

	token, err := ar.tokenService.Issue(r.Context(), user.Email, tables.TokenPurposeReset)
	if err != nil {
		ar.logger.Error("Failed to issue reset token", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		gecho.InternalServerError(w, gecho.WithMessage("Something went wrong"), gecho.Send())
		return
	}

	if err := ar.emailService.SendPasswordResetEmail(user.Email, token.Token); err != nil {
		ar.logger.Error("Failed to send reset email", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to send reset email"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Reset email sent!"),
		gecho.Send(),
	)
}
