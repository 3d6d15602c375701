package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const streamFrameInterval = 100 * time.Millisecond

// StreamHandler отдаёт MJPEG-поток последних кадров камеры.
// Переживает остановку камеры без паники: генератор просто завершается.
func (h *Handlers) StreamHandler(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ticker := time.NewTicker(streamFrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if !h.mgr.Running(label) {
			return
		}

		frame, ok := h.store.Frame(label)
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}
