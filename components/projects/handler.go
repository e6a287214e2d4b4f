package projects

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is an error carrying its response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the status a guard wants returned.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type listResponse struct {
	Data       []Project `json:"data"`
	Categories []string  `json:"categories"`
	Active     string    `json:"active"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler serves the catalogue as JSON, filtered by the category query
// parameter.
func NewHandler(opts Options) http.Handler {
	opts = opts.normalized()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeJSON(w, r, guardStatus(err), errorResponse{Error: err.Error()})
				return
			}
		}

		catalogue, err := opts.catalogue()
		if err != nil {
			writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "projects unavailable"})
			return
		}
		active := NormalizeCategory(r.URL.Query().Get(opts.CategoryParam))
		categories := Categories(catalogue)
		if categories == nil {
			categories = []string{}
		}
		writeJSON(w, r, http.StatusOK, listResponse{
			Data:       Filter(catalogue, active),
			Categories: categories,
			Active:     active,
		})
	})
}

func guardStatus(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		if code := httpErr.StatusCode(); code > 0 {
			return code
		}
	}
	return http.StatusForbidden
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}
