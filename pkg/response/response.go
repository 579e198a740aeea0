package response

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse writes data as a JSON body with the given status code
func SuccessResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

// ErrorResponse writes an error message as a JSON body with the given status code
func ErrorResponse(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
