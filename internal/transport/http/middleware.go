package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"SchedulerApp/pkg/metrics"
)

// statusResponseWriter обёртка для http.ResponseWriter, чтобы захватывать статус-код
// и передавать его дальше
type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader сохраняет статус и вызывает оригинальный WriteHeader
func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware пишет в лог каждый HTTP-запрос и панику, а длительность отдаёт в метрики.
// В метку route пишется шаблон маршрута mux, чтобы id не раздували кардинальность
func LoggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
			route := routeTemplate(r)
			// обработка паники
			defer func() {
				if rec := recover(); rec != nil {
					dur := time.Since(start)
					logger.Error("panic",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Int("status", http.StatusInternalServerError),
						zap.Duration("duration", dur),
						zap.Any("panic", rec))
					metrics.RecordHTTPRequest(r.Method, route, "500", dur)
					panic(rec)
				}
			}()
			next.ServeHTTP(srw, r)
			dur := time.Since(start)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", srw.status),
				zap.Duration("duration", dur))
			metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(srw.status), dur)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
