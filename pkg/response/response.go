// Package response renders the envelope §6.1 requires of every JSON
// endpoint: {ok:true, …} on success, {ok:false, error:{…}} on failure.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// JSON writes payload merged into an {ok:true, …} envelope with the given
// status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := map[string]any{"ok": true}
	if m, ok := payload.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	} else if payload != nil {
		env["data"] = payload
	}
	_ = json.NewEncoder(w).Encode(env)
}

// Error writes an apierr.Error as {ok:false, error:{…}} at the status its
// code maps to (§6.1).
func Error(w http.ResponseWriter, err *apierr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apierr.HTTPStatus(err.Code))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": err,
	})
}
