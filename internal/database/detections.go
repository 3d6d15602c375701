package database

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
)

// LogEvent appends one detection row for an appear or update event.
// Rows are never updated or deleted; the table is the system's audit trail.
func (d *Database) LogEvent(ctx context.Context, ev models.Event) error {
	var (
		class      string
		confidence float64
		bbox       [4]int
		mime       *string
		thumbnail  *string
		meta       models.EventMeta
	)

	switch e := ev.(type) {
	case models.AppearEvent:
		meta, class, confidence, bbox = e.EventMeta, e.Class, e.Confidence, e.BBox
		if e.Thumbnail != "" {
			thumbnail = &e.Thumbnail
			mime = &e.Mime
		}
	case models.UpdateEvent:
		meta, class, confidence, bbox = e.EventMeta, e.Class, e.Confidence, e.BBox
	default:
		return fmt.Errorf("unloggable event kind %q", ev.Kind())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO detections
			(label, class, track_id, confidence, x1, y1, x2, y2, date, time, event, mime, thumbnail_b64)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.Label, class, meta.TrackID, confidence,
		bbox[0], bbox[1], bbox[2], bbox[3],
		meta.Date, meta.Time, string(meta.Event), mime, thumbnail,
	)
	return err
}

// Query returns detection rows filtered by datetime range, label and class,
// ordered ascending by (date, time). Range bounds compare lexicographically
// against date || ' ' || time, so callers pass zero-padded ISO-like strings.
func (d *Database) Query(ctx context.Context, f models.QueryFilter) ([]models.DetectionRow, error) {
	query := `SELECT id, label, class, track_id, confidence, x1, y1, x2, y2,
		date, time, event, mime, thumbnail_b64 FROM detections`

	var where []string
	var args []any
	if f.Start != "" {
		where = append(where, "(date || ' ' || time) >= ?")
		args = append(args, f.Start)
	}
	if f.End != "" {
		where = append(where, "(date || ' ' || time) <= ?")
		args = append(args, f.End)
	}
	if f.Label != "" {
		where = append(where, "label = ?")
		args = append(args, f.Label)
	}
	if f.Class != "" {
		where = append(where, "class = ?")
		args = append(args, f.Class)
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date, time"

	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.DetectionRow
	for rows.Next() {
		var r models.DetectionRow
		err := rows.Scan(
			&r.ID,
			&r.Label,
			&r.Class,
			&r.TrackID,
			&r.Confidence,
			&r.X1, &r.Y1, &r.X2, &r.Y2,
			&r.Date,
			&r.Time,
			&r.Event,
			&r.Mime,
			&r.Thumbnail,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

// ExportCSV renders the filtered result set as CSV bytes
func (d *Database) ExportCSV(ctx context.Context, f models.QueryFilter) ([]byte, error) {
	result, err := d.Query(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "label", "class", "track_id", "confidence",
		"x1", "y1", "x2", "y2", "date", "time", "event"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range result {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Label,
			r.Class,
			strconv.FormatInt(r.TrackID, 10),
			strconv.FormatFloat(r.Confidence, 'f', -1, 64),
			strconv.Itoa(r.X1), strconv.Itoa(r.Y1),
			strconv.Itoa(r.X2), strconv.Itoa(r.Y2),
			r.Date,
			r.Time,
			r.Event,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
