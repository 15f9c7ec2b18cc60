// Package whoami answers with the caller's source address as plain text.
// Deployed somewhere public, it is an IPServer endpoint under the
// operator's control.
package whoami

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter serves GET /ip. With trustProxy the address is taken from
// True-Client-IP, X-Real-IP or X-Forwarded-For when a proxy sets them.
func NewRouter(trustProxy bool) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Get("/ip", SourceIP)
	return r
}

func SourceIP(w http.ResponseWriter, r *http.Request) {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	log.Debug().Str("ip", ip).Msg("source ip requested")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ip))
}
