package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

type ExportData struct {
	Craft   string             `json:"craft"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Physics physics.Config     `json:"physics"`
	Times   []float64          `json:"times"`
	Frames  [][]craft.Vec2     `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a whole run as one JSON document.
func ExportJSON(w io.Writer, name string, cfg physics.Config, rc physics.RunConfig, result *physics.Result) error {
	data := ExportData{
		Craft:   name,
		Dt:      rc.Dt,
		Steps:   result.StepsTaken,
		Physics: cfg,
		Times:   result.Times,
		Frames:  result.Frames,
		Metrics: result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
