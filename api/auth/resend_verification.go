package auth

import (
	"net/http"
	"time"

	"atelier_server/lib"
	"atelier_server/structs"
	"atelier_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

// HandleResendVerification re-issues a verification token and mails it
// again. The response never reveals whether the address has an account.
func (ar *AuthRoutesManager) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.ResendVerificationRequest](r)
	if err != nil {
		ar.logger.Warn("Failed to extract and validate request body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Invalid request"), gecho.WithData(err), gecho.Send())
		return
	}

	user, err := ar.accounts.FindByEmail(r.Context(), body.Email)
	if err != nil {
		ar.logger.Error("Failed to find user", gecho.Field("error", err))
		// Don't reveal if user exists or not
		gecho.Success(w, gecho.WithMessage("Verification email sent"), gecho.Send())
		return
	}

	// If user not found, still return success to prevent email enumeration
	if user == nil {
		ar.logger.Warn("Resend requested for unknown address")
		gecho.Success(w, gecho.WithMessage("Verification email sent"), gecho.Send())
		return
	}

	if user.EmailVerified {
		ar.logger.Info("Email already verified", gecho.Field("user_id", user.Id))
		gecho.Success(w, gecho.WithMessage("Email is already verified"), gecho.Send())
		return
	}

	// Cooldown check on the current token so the mailbox can't be spammed
	existing, err := ar.tokenService.FindActiveToken(r.Context(), user.Email, tables.TokenPurposeVerify)
	if err == nil && existing != nil {
		sinceLastEmail := time.Since(existing.CreatedAt)
		if sinceLastEmail < ar.cfg.Token.ResendCooldown {
			ar.logger.Warn("Resend cooldown active",
				gecho.Field("user_id", user.Id),
				gecho.Field("time_since_last", sinceLastEmail))
			gecho.TooManyRequests(w,
				gecho.WithMessage("Please wait before requesting another email"),
				gecho.WithData(map[string]any{
					"retry_after_seconds": int((ar.cfg.Token.ResendCooldown - sinceLastEmail).Seconds()),
				}),
				gecho.Send())
			return
		}
	}

	// Issue supersedes the previous token, so only the newest link works
	token, err := ar.tokenService.Issue(r.Context(), user.Email, tables.TokenPurposeVerify)
	if err != nil {
		ar.logger.Error("Failed to issue verification token", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to send verification email"), gecho.Send())
		return
	}

	if err := ar.emailService.SendVerificationEmail(user.Email, token.Token); err != nil {
		ar.logger.Error("Failed to send verification email", gecho.Field("error", err), gecho.Field("user_id", user.Id))
		gecho.InternalServerError(w, gecho.WithMessage("Failed to send verification email"), gecho.Send())
		return
	}

	ar.logger.Info("Verification email resent", gecho.Field("user_id", user.Id))
	gecho.Success(w, gecho.WithMessage("Verification email sent"), gecho.Send())
}
