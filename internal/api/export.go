package api

import (
	"errors"
	"net/http"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/report"
)

func filterFromQuery(r *http.Request) models.QueryFilter {
	q := r.URL.Query()
	return models.QueryFilter{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Label: q.Get("label"),
		Class: q.Get("class"),
	}
}

// QueryDetectionsHandler возвращает отфильтрованные строки журнала
func (h *Handlers) QueryDetectionsHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.db.Query(r.Context(), filterFromQuery(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if result == nil {
		result = []models.DetectionRow{}
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportCSVHandler отдаёт тот же результат выборки в CSV
func (h *Handlers) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.db.ExportCSV(r.Context(), filterFromQuery(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="detections.csv"`)
	_, _ = w.Write(data)
}

// ExportReportHandler отдаёт отчёт по той же выборке. Рендерер
// опционален: без него ручка отвечает 501, выборка и CSV
// продолжают работать.
func (h *Handlers) ExportReportHandler(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		http.Error(w, report.ErrUnavailable.Error(), http.StatusNotImplemented)
		return
	}

	f := filterFromQuery(r)
	result, err := h.db.Query(r.Context(), f)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	data, err := h.renderer.Render(result, f)
	if err != nil {
		if errors.Is(err, report.ErrUnavailable) {
			http.Error(w, err.Error(), http.StatusNotImplemented)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="detections-report.html"`)
	_, _ = w.Write(data)
}
