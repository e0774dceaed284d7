package lib

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type resetBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestExtractAndValidateBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/reset", strings.NewReader(`{"email":"anna@example.com"}`))

	body, err := ExtractAndValidateBody[resetBody](r)
	require.NoError(t, err)
	require.Equal(t, "anna@example.com", body.Email)
}

func TestExtractAndValidateBodyRejectsMissingField(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/reset", strings.NewReader(`{}`))

	_, err := ExtractAndValidateBody[resetBody](r)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	require.Equal(t, "email", ve.Errors[0].Field)
	require.Equal(t, "is required", ve.Errors[0].Message)
}

func TestExtractAndValidateBodyRejectsInvalidEmail(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/reset", strings.NewReader(`{"email":"not-an-email"}`))

	_, err := ExtractAndValidateBody[resetBody](r)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "must be a valid email address", ve.Errors[0].Message)
}

func TestExtractAndValidateBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/reset", strings.NewReader(`{"email":"anna@example.com","admin":true}`))

	_, err := ExtractAndValidateBody[resetBody](r)
	require.Error(t, err)
}

func TestExtractAndValidateBodyRejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/auth/reset", strings.NewReader(`{"email":`))

	_, err := ExtractAndValidateBody[resetBody](r)
	require.Error(t, err)
}
