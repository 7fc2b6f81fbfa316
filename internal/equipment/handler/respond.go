package handler

import (
	"net/http"

	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
)

func writeError(log *logger.Logger, w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func writeSuccess(log *logger.Logger, w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func writeCreated(log *logger.Logger, w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func writePaginated(log *logger.Logger, w http.ResponseWriter, handler string, data any, total int64, limit int, offset int64) {
	if err := httputil.WritePaginated(w, data, total, limit, offset); err != nil {
		log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

// decodeBody reads a JSON body into dst. It answers 400 itself and reports
// false when the body is malformed.
func decodeBody(log *logger.Logger, w http.ResponseWriter, r *http.Request, handler string, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		if writeErr := httputil.WriteBadRequest(w, "Invalid request body"); writeErr != nil {
			log.Error("failed to write JSON response", "handler", handler, "operation", "WriteBadRequest", "error", writeErr)
		}
		return false
	}
	return true
}
