package httpapi

import (
	"encoding/json"
	"net/http"
	"reflect"

	"lostfound-server/internal/app"
)

// writeJSON encodes data as the response body. A nil slice/map passed as
// data encodes as its JSON empty form ([] or {}) rather than null, matching
// the debug handler precedent this is grounded on. Nil slices nested inside
// a struct are encoded by encoding/json as usual (null).
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}
	switch v := reflect.ValueOf(data); v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			_, _ = w.Write([]byte("[]"))
			return
		}
	case reflect.Map:
		if v.IsNil() {
			_, _ = w.Write([]byte("{}"))
			return
		}
	}
	_ = json.NewEncoder(w).Encode(data)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps an app.Error's Kind to the status codes in §7 and
// writes a {code,message} body.
func writeAppError(w http.ResponseWriter, err *app.Error) {
	status, code := statusForKind(err.Kind)
	writeJSON(w, status, apiError{Code: code, Message: err.Message})
}

func statusForKind(kind app.Kind) (int, string) {
	switch kind {
	case app.KindInvalidArgument:
		return http.StatusBadRequest, "invalidArgument"
	case app.KindMapNotFound:
		return http.StatusNotFound, "mapNotFound"
	case app.KindInvalidToken:
		return http.StatusUnauthorized, "invalidToken"
	case app.KindUnknownToken:
		return http.StatusUnauthorized, "unknownToken"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, apiError{Code: "badRequest", Message: message})
}
