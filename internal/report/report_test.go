package report

import (
	"strings"
	"testing"

	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	rows := []models.DetectionRow{
		{Class: "person"},
		{Class: "person"},
		{Class: "car"},
	}

	data, err := NewEcharts().Render(rows, models.QueryFilter{
		Start: "2024-01-01",
		Label: "cam1",
	})
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Detections Report")
	assert.Contains(t, html, "3 detections")
	assert.Contains(t, html, "cam1")
	assert.Contains(t, html, "person")
	assert.Contains(t, html, "car")
}

func TestRenderEmptyResult(t *testing.T) {
	data, err := NewEcharts().Render(nil, models.QueryFilter{})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "0 detections"))
}
