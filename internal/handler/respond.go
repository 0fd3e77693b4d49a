package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/transferdesk/platform/internal/domain"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for
// status codes. Field errors are included under "fields".
func RespondError(w http.ResponseWriter, err error) {
	if appErr, ok := domain.AsAppError(err); ok {
		RespondJSON(w, appErr.Status, errorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, errorBody{
		Code:    domain.CodeInternal,
		Message: "internal server error",
	})
}

func respondBadBody(w http.ResponseWriter) {
	RespondJSON(w, http.StatusBadRequest, errorBody{
		Code:    domain.CodeValidation,
		Message: "invalid request body",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over
// 1 MiB are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
}

// ClientIP returns the first X-Forwarded-For address, or the host of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
