package services

import (
	"fmt"

	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
)

// Sender is the thin delivery seam in front of the transactional email
// provider. Tests substitute a recorder; production uses Resend.
type Sender interface {
	Send(params *resend.SendEmailRequest) error
}

type resendSender struct {
	client *resend.Client
}

// NewResendSender wraps an explicitly constructed Resend client. The client
// is built once at startup from the environment key and injected here, so no
// package-level provider state exists.
func NewResendSender(client *resend.Client) Sender {
	return &resendSender{client: client}
}

func (s *resendSender) Send(params *resend.SendEmailRequest) error {
	_, err := s.client.Emails.Send(params)
	return err
}

// EmailService builds and delivers the transactional emails of the token
// flow. Delivery failures are returned to the caller, never swallowed; a
// failed send does not invalidate the token that was already issued, the
// user can simply re-request.
type EmailService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	sender Sender
}

func NewEmailService(logger *gecho.Logger, cfg *structs.Config, sender Sender) *EmailService {
	return &EmailService{
		logger: logger,
		cfg:    cfg,
		sender: sender,
	}
}

func (es *EmailService) SendEmail(to []string, subject string, body string) error {
	params := &resend.SendEmailRequest{
		From:    es.cfg.Email.From,
		To:      to,
		Html:    body,
		Subject: subject,
	}

	if err := es.sender.Send(params); err != nil {
		es.logger.Error("Failed to send email", gecho.Field("error", err), gecho.Field("to", to))
		return err
	}

	return nil
}

// SendVerificationEmail mails the confirm-email deep link. The raw token
// rides as a query parameter on the frontend URL.
func (es *EmailService) SendVerificationEmail(email, token string) error {
	confirmLink := fmt.Sprintf("%s/auth/new-verification?token=%s", es.cfg.Server.FrontendURL, token)

	body := es.renderLinkEmail(
		"Confirm your email address",
		"Click the button below to confirm your email address and activate your account.",
		"Confirm Email",
		confirmLink,
		"If you did not create an account, you can ignore this email.",
	)

	return es.SendEmail([]string{email}, "Confirm your Email", body)
}

// SendPasswordResetEmail mails the new-password deep link.
func (es *EmailService) SendPasswordResetEmail(email, token string) error {
	resetLink := fmt.Sprintf("%s/auth/new-password?token=%s", es.cfg.Server.FrontendURL, token)

	body := es.renderLinkEmail(
		"Reset your password",
		"Click the button below to choose a new password for your account.",
		"Reset Password",
		resetLink,
		"If you did not request a password reset, you can ignore this email and your password will stay unchanged.",
	)

	return es.SendEmail([]string{email}, "Reset your password", body)
}

func (es *EmailService) renderLinkEmail(heading, intro, buttonLabel, link, footnote string) string {
	return fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<style>
				body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
				.container { max-width: 600px; margin: 0 auto; padding: 20px; }
				.header { background-color: #1f2937; color: white; padding: 20px; text-align: center; }
				.content { padding: 20px; background-color: #f9f9f9; }
				.button { display: inline-block; padding: 15px 30px; background-color: #1f2937; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
				.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
			</style>
		</head>
		<body>
			<div class="container">
				<div class="header">
					<h1>%s</h1>
				</div>
				<div class="content">
					<p>%s</p>
					<p style="text-align: center;">
						<a href="%s" class="button">%s</a>
					</p>
					<p>This link expires in %.0f minutes.</p>
					<p>%s</p>

					<p>Link not working? Copy and paste the following URL into your browser:</p>
					<p style="word-break: break-all;">%s</p>
				</div>
				<div class="footer">
					<p>Atelier | Original Artwork, Directly from Artists</p>
					<p>Questions? Contact us at %s</p>
				</div>
			</div>
		</body>
		</html>
	`, heading, intro, link, buttonLabel, es.cfg.Token.TTL.Minutes(), footnote, link, es.cfg.Email.SupportEmail)
}
