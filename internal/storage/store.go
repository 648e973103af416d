package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/physics"
)

var ErrMalformedTrace = errors.New("storage: malformed trace")

const (
	metadataFile = "metadata.json"
	craftFile    = "craft.json"
	traceFile    = "trace.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Craft      string             `json:"craft"`
	Timestamp  time.Time          `json:"timestamp"`
	Nodes      int                `json:"nodes"`
	Rods       int                `json:"rods"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Physics    physics.Config     `json:"physics"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the starting craft, the run metadata and, when frames were
// recorded, the node trace. It returns the new run ID.
func (s *Store) Save(name string, start *craft.Craft, cfg physics.Config, rc physics.RunConfig, result *physics.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_%d", name, now.Unix()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Craft:      name,
		Timestamp:  now,
		Nodes:      start.NodeCount(),
		Rods:       start.RodCount(),
		Dt:         rc.Dt,
		Steps:      rc.Steps,
		StepsTaken: result.StepsTaken,
		Physics:    cfg,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := start.SaveFile(filepath.Join(runDir, craftFile)); err != nil {
		return "", err
	}

	if err := writeTrace(filepath.Join(runDir, traceFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunDir creates a unique directory, suffixing id when two runs land in
// the same second.
func (s *Store) newRunDir(id string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	candidate := id
	for i := 1; ; i++ {
		dir := filepath.Join(s.baseDir, candidate)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return candidate, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		candidate = fmt.Sprintf("%s-%d", id, i)
	}
}

func writeTrace(path string, result *physics.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	nodes := 0
	if len(result.Frames) > 0 {
		nodes = len(result.Frames[0])
	}
	header := make([]string, 0, 1+2*nodes)
	header = append(header, "time")
	for i := 0; i < nodes; i++ {
		header = append(header, fmt.Sprintf("n%d_x", i), fmt.Sprintf("n%d_y", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, frame := range result.Frames {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, p := range frame {
			row = append(row,
				strconv.FormatFloat(p.X, 'f', 6, 64),
				strconv.FormatFloat(p.Y, 'f', 6, 64),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadCraft returns the craft as it was when the run started.
func (s *Store) LoadCraft(runID string) (*craft.Craft, error) {
	return craft.LoadFile(filepath.Join(s.baseDir, runID, craftFile))
}

// LoadTrace returns the recorded node positions per frame and the frame
// times.
func (s *Store) LoadTrace(runID string) ([][]craft.Vec2, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedTrace, err)
	}
	if len(records) < 2 {
		return [][]craft.Vec2{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	frames := make([][]craft.Vec2, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record)%2 != 1 {
			return nil, nil, fmt.Errorf("%w: row %d has %d fields", ErrMalformedTrace, i+1, len(record))
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: row %d: %v", ErrMalformedTrace, i+1, err)
			}
			vals[j] = v
		}

		times = append(times, vals[0])
		frame := make([]craft.Vec2, 0, (len(vals)-1)/2)
		for j := 1; j+1 < len(vals); j += 2 {
			frame = append(frame, craft.V(vals[j], vals[j+1]))
		}
		frames = append(frames, frame)
	}

	return frames, times, nil
}

// NodeSeries extracts one coordinate series of node i from frames.
func NodeSeries(frames [][]craft.Vec2, i int) (xs, ys []float64) {
	xs = make([]float64, 0, len(frames))
	ys = make([]float64, 0, len(frames))
	for _, f := range frames {
		if i >= len(f) {
			continue
		}
		xs = append(xs, f[i].X)
		ys = append(ys, f[i].Y)
	}
	return xs, ys
}
