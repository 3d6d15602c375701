package api

import (
	"encoding/json"
	"net/http"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/gorilla/mux"
)

// SetZonesHandler заменяет все зоны камеры целиком
func (h *Handlers) SetZonesHandler(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	var zs []models.Zone
	if err := json.NewDecoder(r.Body).Decode(&zs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, z := range zs {
		if len(z.Points) < 3 {
			http.Error(w, "zone polygon needs at least 3 points", http.StatusBadRequest)
			return
		}
	}

	h.mgr.SetZones(label, zs)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "zones": len(zs)})
}

// GetZonesHandler возвращает текущие зоны камеры
func (h *Handlers) GetZonesHandler(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	zs := h.mgr.GetZones(label)
	if zs == nil {
		zs = []models.Zone{}
	}
	writeJSON(w, http.StatusOK, zs)
}
