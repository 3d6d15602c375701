package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Karol-NMD/YOLO-Witness/internal/manager"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/gorilla/mux"
)

// CameraInput тело запроса на добавление камеры
type CameraInput struct {
	IPAddress string `json:"ip_address"`
	Label     string `json:"label"`
}

// AddCameraHandler запускает воркер камеры
func (h *Handlers) AddCameraHandler(w http.ResponseWriter, r *http.Request) {
	var input CameraInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if input.Label == "" || input.IPAddress == "" {
		http.Error(w, "ip_address and label are required", http.StatusBadRequest)
		return
	}

	err := h.mgr.Start(r.Context(), input.IPAddress, input.Label)
	switch {
	case errors.Is(err, manager.ErrAlreadyRunning):
		writeJSON(w, http.StatusOK, map[string]string{"status": "Already running"})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Started"})
	}
}

// StopCameraHandler останавливает воркер камеры; остановка не-запущенной
// камеры считается штатным ответом, не ошибкой
func (h *Handlers) StopCameraHandler(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	err := h.mgr.Stop(label, models.CauseUser)
	switch {
	case errors.Is(err, manager.ErrNotRunning):
		writeJSON(w, http.StatusOK, map[string]string{"status": "Not running"})
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Stopped"})
	}
}

// StopAllHandler останавливает все камеры
func (h *Handlers) StopAllHandler(w http.ResponseWriter, r *http.Request) {
	h.mgr.StopAll(models.CauseUser)
	writeJSON(w, http.StatusOK, map[string]string{"status": "Stopped"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
