package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrUnavailable means no report renderer is wired in. The query path keeps
// working; only this one export is disabled.
var ErrUnavailable = errors.New("report rendering unavailable")

// Renderer turns a filtered result set into report bytes. Rendering is a
// best-effort capability: its absence must never crash the query path.
type Renderer interface {
	Render(result []models.DetectionRow, f models.QueryFilter) ([]byte, error)
}

// Echarts renders an HTML report with a per-class detection chart
type Echarts struct{}

func NewEcharts() *Echarts { return &Echarts{} }

func (e *Echarts) Render(result []models.DetectionRow, f models.QueryFilter) ([]byte, error) {
	perClass := map[string]int{}
	for _, r := range result {
		perClass[r.Class]++
	}

	classes := make([]string, 0, len(perClass))
	for class := range perClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	values := make([]opts.BarData, 0, len(classes))
	for _, class := range classes {
		values = append(values, opts.BarData{Value: perClass[class]})
	}

	subtitle := fmt.Sprintf("%d detections", len(result))
	if f.Start != "" || f.End != "" {
		subtitle = fmt.Sprintf("%s, %s .. %s", subtitle, orAny(f.Start), orAny(f.End))
	}
	if f.Label != "" {
		subtitle += ", camera " + f.Label
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Detections Report",
		Subtitle: subtitle,
	}))
	bar.SetXAxis(classes).AddSeries("detections", values)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}
