package auth

import (
	"context"
	"net/http"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

func (ar *AuthRoutesManager) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.RegisterRequest](r)
	if err != nil {
		ar.logger.Warn("Failed to extract and validate request body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check your registration information"), gecho.WithData(err), gecho.Send())
		return
	}

	user, err := ar.authService.Register(r.Context(), body)
	if err != nil {
		userMessage := lib.GetUserMessage(err)

		// Unique violations return 409 Conflict (already logged as warn in service)
		if lib.IsUniqueViolation(err) {
			gecho.Conflict(w, gecho.WithMessage(userMessage), gecho.Send())
			return
		}

		gecho.InternalServerError(w, gecho.WithMessage(userMessage), gecho.Send())
		return
	}

	// Issue the verification token and send the confirmation mail off the
	// request path. A delivery failure never rolls back the registration;
	// the user can ask for a resend.
	go func() {
		token, err := ar.tokenService.Issue(context.Background(), user.Email, tables.TokenPurposeVerify)
		if err != nil {
			ar.logger.Error("Failed to issue verification token", gecho.Field("error", err), gecho.Field("user_id", user.Id))
			return
		}
		if err := ar.emailService.SendVerificationEmail(user.Email, token.Token); err != nil {
			ar.logger.Error("Failed to send verification email", gecho.Field("error", err), gecho.Field("user_id", user.Id))
			return
		}
		ar.logger.Debug("Verification email sent", gecho.Field("token_id", token.Id), gecho.Field("user_id", user.Id))
	}()

	gecho.Success(w,
		gecho.WithMessage("Account created. Please check your email to verify your address"),
		gecho.Send(),
	)
}
