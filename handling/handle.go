package handling

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

// HandleError logs an internal failure with its context message and renders a
// bare 500, keeping the underlying error out of the response body.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	logger.Error(msg, gecho.Field("error", err), gecho.WithCallerSkip(3))

	return gecho.InternalServerError(w).Send()
}
