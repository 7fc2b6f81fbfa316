package middleware

import (
	"net/http"

	"bikeshare/pkg/metrics"
)

func Metrics() func(http.Handler) http.Handler {
	return metrics.InstrumentHandler
}
