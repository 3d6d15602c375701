package api

import (
	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/Karol-NMD/YOLO-Witness/internal/counts"
	"github.com/Karol-NMD/YOLO-Witness/internal/database"
	"github.com/Karol-NMD/YOLO-Witness/internal/manager"
	"github.com/Karol-NMD/YOLO-Witness/internal/report"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type Handlers struct {
	mgr      *manager.Manager
	db       *database.Database
	broker   *broker.Broker
	counts   *counts.Publisher
	store    *store.Store
	renderer report.Renderer // может быть nil: экспорт отчёта недоступен
	upgrader websocket.Upgrader
}

func NewHandlers(mgr *manager.Manager, db *database.Database, br *broker.Broker, cp *counts.Publisher, st *store.Store, renderer report.Renderer) *Handlers {
	return &Handlers{
		mgr:      mgr,
		db:       db,
		broker:   br,
		counts:   cp,
		store:    st,
		renderer: renderer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Router регистрирует все обработчики
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/add_camera", h.AddCameraHandler).Methods("POST")
	r.HandleFunc("/api/stop_camera/{label}", h.StopCameraHandler).Methods("POST")
	r.HandleFunc("/api/stop_all", h.StopAllHandler).Methods("POST")
	r.HandleFunc("/api/zones/{label}", h.GetZonesHandler).Methods("GET")
	r.HandleFunc("/api/zones/{label}", h.SetZonesHandler).Methods("POST")
	r.HandleFunc("/api/detections", h.QueryDetectionsHandler).Methods("GET")
	r.HandleFunc("/api/export/csv", h.ExportCSVHandler).Methods("GET")
	r.HandleFunc("/api/export/report", h.ExportReportHandler).Methods("GET")
	r.HandleFunc("/stream/{label}", h.StreamHandler).Methods("GET")
	r.HandleFunc("/ws/events", h.EventsSocketHandler)
	r.HandleFunc("/ws/counts", h.CountsSocketHandler)
	r.HandleFunc("/ws/counts-list", h.UICountsSocketHandler)

	return r
}
