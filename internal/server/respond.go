package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/glotvold/go-site/pkg/i18n"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("write json response", slog.Any("error", err))
	}
}

func methodNotAllowedWith(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// resolveLocale picks the first supported locale from candidates, falling
// back to the server default.
func (s *Server) resolveLocale(candidates ...string) string {
	for _, candidate := range candidates {
		switch locale := i18n.NormalizeLocale(candidate); locale {
		case i18n.LocaleNorwegian, i18n.LocaleEnglish:
			return locale
		}
	}
	return s.locale
}

func (s *Server) t(locale, key string, args ...any) string {
	return i18n.T(s.translator, locale, key, args...)
}

// allow consumes one submission token for the client.
func (s *Server) allow(r *http.Request) bool {
	if s.limiter.Allow(s.clients.Client(r), s.now()) {
		return true
	}
	s.metrics.RecordThrottled()
	return false
}
