package server

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestLogger logs one line per request, at warn for 4xx and error
// for 5xx.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				level := zapcore.InfoLevel
				switch {
				case ww.Status() >= 500:
					level = zapcore.ErrorLevel
				case ww.Status() >= 400:
					level = zapcore.WarnLevel
				}
				if ce := logger.Check(level, "request completed"); ce != nil {
					ce.Write(
						zap.String("request_id", chimiddleware.GetReqID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Int("status", ww.Status()),
						zap.Int("bytes_out", ww.BytesWritten()),
						zap.Duration("latency", time.Since(start)),
					)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
