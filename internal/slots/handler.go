package slots

import (
	"encoding/json"
	"net/http"
)

// Handler serves the slot list to the kiosk front-end.
// GET /api/v1/slots
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(BusinessHours())
	}
}
