package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/Karol-NMD/YOLO-Witness/internal/counts"
	"github.com/Karol-NMD/YOLO-Witness/internal/database"
	"github.com/Karol-NMD/YOLO-Witness/internal/manager"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/report"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/Karol-NMD/YOLO-Witness/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct{}

func (stubDetector) Track(context.Context, []byte, string) ([]models.RawDetection, error) {
	return nil, nil
}
func (stubDetector) Predict(context.Context, []byte) ([]models.RawDetection, error) {
	return nil, nil
}

func testHandlers(t *testing.T, renderer report.Renderer) (*Handlers, *database.Database) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "detections.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })

	st := store.New()
	br := broker.New(broker.Options{}, db)
	mgr := manager.New(st, br, stubDetector{}, worker.Config{}, time.Second)
	cp := counts.New(st, time.Hour)

	return NewHandlers(mgr, db, br, cp, st, renderer), db
}

func seedDetections(t *testing.T, db *database.Database) {
	t.Helper()
	for i, tm := range []string{"09:00:00", "10:00:00"} {
		ev := models.AppearEvent{
			EventMeta: models.EventMeta{
				Event:   models.EventAppear,
				Label:   "cam1",
				TrackID: i + 1,
				Date:    "2024-01-02",
				Time:    tm,
			},
			Class:      "person",
			Confidence: 0.9,
			BBox:       [4]int{0, 0, 50, 50},
		}
		require.NoError(t, db.LogEvent(context.Background(), ev))
	}
}

func do(h *Handlers, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestAddCameraValidation(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodPost, "/api/add_camera", []byte("not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/add_camera", []byte(`{"label":"cam1"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/add_camera", []byte(`{"ip_address":"http://x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopCameraNotRunning(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodPost, "/api/stop_camera/ghost", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not running", body["status"])
}

func TestStopAll(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodPost, "/api/stop_all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Stopped", body["status"])
}

func TestZonesRoundTrip(t *testing.T) {
	h, _ := testHandlers(t, nil)

	// до настройки возвращается пустой список, не null
	rec := do(h, http.MethodGet, "/api/zones/cam1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	zones := `[{"id":"entrance","points":[[0,0],[100,0],[100,100],[0,100]]}]`
	rec = do(h, http.MethodPost, "/api/zones/cam1", []byte(zones))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/zones/cam1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Zone
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "entrance", got[0].ID)
}

func TestSetZonesRejectsDegeneratePolygon(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodPost, "/api/zones/cam1", []byte(`[{"id":"line","points":[[0,0],[1,1]]}]`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryDetections(t *testing.T) {
	h, db := testHandlers(t, nil)
	seedDetections(t, db)

	rec := do(h, http.MethodGet, "/api/detections?label=cam1&class=person", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []models.DetectionRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func TestQueryDetectionsEmptyIsList(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodGet, "/api/detections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestExportCSV(t *testing.T) {
	h, db := testHandlers(t, nil)
	seedDetections(t, db)

	rec := do(h, http.MethodGet, "/api/export/csv?start=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "detections.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3) // заголовок и две строки
}

func TestExportReportWithoutRenderer(t *testing.T) {
	h, _ := testHandlers(t, nil)

	rec := do(h, http.MethodGet, "/api/export/report", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestExportReport(t *testing.T) {
	h, db := testHandlers(t, report.NewEcharts())
	seedDetections(t, db)

	rec := do(h, http.MethodGet, "/api/export/report?label=cam1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Detections Report")
}
