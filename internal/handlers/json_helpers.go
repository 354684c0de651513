package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// respondWithJSON writes a JSON response. Nil slices are replaced with empty
// ones so collection endpoints always return [] instead of null, which is
// what array-expecting frontends rely on.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	if v := reflect.ValueOf(payload); v.Kind() == reflect.Slice && v.IsNil() {
		payload = reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		w.Write([]byte(`{"message":"Internal server error"}`))
	}
}

// respondWithError writes the uniform JSON error envelope
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}
