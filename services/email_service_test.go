package services

import (
	"errors"
	"testing"
	"time"

	"atelier_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/require"
)

// recordingSender captures outgoing mail instead of delivering it.
type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (s *recordingSender) Send(params *resend.SendEmailRequest) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func newTestEmailService(sender Sender) *EmailService {
	cfg := &structs.Config{
		Server: &structs.ServerConfig{
			FrontendURL: "https://atelier-market.com",
		},
		Email: &structs.EmailConfig{
			From:         "support@atelier-market.com",
			SupportEmail: "support@atelier-market.com",
		},
		Token: &structs.TokenConfig{
			TTL: time.Hour,
		},
	}
	return NewEmailService(gecho.NewDefaultLogger(), cfg, sender)
}

func TestSendVerificationEmailBuildsDeepLink(t *testing.T) {
	sender := &recordingSender{}
	es := newTestEmailService(sender)

	err := es.SendVerificationEmail("anna@example.com", "raw-token-123")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	mail := sender.sent[0]
	require.Equal(t, []string{"anna@example.com"}, mail.To)
	require.Equal(t, "support@atelier-market.com", mail.From)
	require.Equal(t, "Confirm your Email", mail.Subject)
	require.Contains(t, mail.Html, "https://atelier-market.com/auth/new-verification?token=raw-token-123")
}

func TestSendPasswordResetEmailBuildsDeepLink(t *testing.T) {
	sender := &recordingSender{}
	es := newTestEmailService(sender)

	err := es.SendPasswordResetEmail("anna@example.com", "raw-token-456")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	mail := sender.sent[0]
	require.Equal(t, "Reset your password", mail.Subject)
	require.Contains(t, mail.Html, "https://atelier-market.com/auth/new-password?token=raw-token-456")
}

func TestSendEmailSurfacesProviderError(t *testing.T) {
	providerErr := errors.New("resend: 429 too many requests")
	sender := &recordingSender{err: providerErr}
	es := newTestEmailService(sender)

	err := es.SendVerificationEmail("anna@example.com", "raw-token-123")
	require.ErrorIs(t, err, providerErr)
	require.Empty(t, sender.sent)
}
