package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// sitePages are the paths a phone click is attributed to. Anything else is
// counted as "unknown" so the metric labels stay bounded.
var sitePages = map[string]bool{
	"/":           true,
	"/kontakt":    true,
	"/prosjekter": true,
}

// handleRing counts a click on a tracked phone link and sends the browser on
// to the tel: target.
func (s *Server) handleRing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowedWith(w, http.MethodGet, http.MethodHead)
		return
	}
	number := strings.TrimSpace(r.URL.Query().Get("to"))
	if !validTelTarget(number) {
		http.Error(w, "invalid phone number", http.StatusBadRequest)
		return
	}
	page := refererPage(r)
	s.logger.Info("phone link clicked",
		slog.String("href", "tel:"+number),
		slog.String("page", page),
	)
	s.metrics.RecordPhoneClick(page)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, "tel:"+number, http.StatusFound)
}

// validTelTarget accepts what the digits filter produces: digits with an
// optional leading '+'.
func validTelTarget(number string) bool {
	digits := strings.TrimPrefix(number, "+")
	if len(digits) < 3 || len(digits) > 20 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func refererPage(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || (ref.Host != "" && ref.Host != r.Host) {
		return ""
	}
	if sitePages[ref.Path] {
		return ref.Path
	}
	return ""
}
