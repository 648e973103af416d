package craft

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func sampleCraft() *Craft {
	c := New()
	c.Nodes = append(c.Nodes,
		Node{Pos: V(0, 0), Prev: V(0, 0), Kind: Fixed},
		Node{Pos: V(100, 0), Prev: V(99.5, 0.25), Kind: Joint},
		Node{Pos: V(100, 100), Prev: V(100, 100), Kind: Joint},
	)
	c.Rods = append(c.Rods,
		Rod{A: 0, B: 1, RestLength: 100, Kind: Solid},
		Rod{A: 1, B: 2, RestLength: 100, Kind: Rope},
		Rod{A: 2, B: 0, RestLength: 100, Kind: Spring},
		Rod{A: 0, B: 2, RestLength: 150, Kind: Piston, MinLength: 100, MaxLength: 200},
	)
	return c
}

func TestDistance(t *testing.T) {
	c := sampleCraft()
	tests := []struct {
		a, b int
		want float64
	}{
		{0, 1, 100},
		{1, 2, 100},
		{0, 2, math.Sqrt(2) * 100},
		{1, 1, 0},
	}
	for _, tt := range tests {
		if got := c.Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rod  Rod
		want error
	}{
		{"valid", Rod{A: 0, B: 1}, nil},
		{"a out of range", Rod{A: 3, B: 1}, ErrNodeNotFound},
		{"b negative", Rod{A: 0, B: -1}, ErrNodeNotFound},
		{"self loop", Rod{A: 1, B: 1}, ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCraft()
			c.Rods = []Rod{tt.rod}
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := sampleCraft()
	cp := c.Clone()
	if !c.Equal(cp) {
		t.Fatal("clone differs from original")
	}
	cp.Nodes[1].Pos.X = 42
	cp.Rods[0].Kind = Rope
	if c.Nodes[1].Pos.X == 42 || c.Rods[0].Kind == Rope {
		t.Error("mutating clone changed original")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := sampleCraft()

	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !c.Equal(got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, c)
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "craft.json")
	c := sampleCraft()
	if err := c.SaveFile(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.NodeCount() != 3 || got.RodCount() != 4 {
		t.Errorf("got %d nodes %d rods, want 3 and 4", got.NodeCount(), got.RodCount())
	}
}

func TestLoadInvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"truncated", `{"nodes": [`},
		{"unknown rod kind", `{"nodes":[{"pos":{"x":0,"y":0},"prev_pos":{"x":0,"y":0},"kind":"joint"},{"pos":{"x":1,"y":0},"prev_pos":{"x":1,"y":0},"kind":"joint"}],"rods":[{"node_a":0,"node_b":1,"rest_length":1,"kind":"elastic"}]}`},
		{"unknown node kind", `{"nodes":[{"pos":{"x":0,"y":0},"prev_pos":{"x":0,"y":0},"kind":"floating"}],"rods":[]}`},
		{"dangling rod", `{"nodes":[{"pos":{"x":0,"y":0},"prev_pos":{"x":0,"y":0},"kind":"joint"}],"rods":[{"node_a":0,"node_b":5,"rest_length":1,"kind":"solid"}]}`},
		{"unknown field", `{"nodes":[],"rods":[],"triangles":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data))
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Load() = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestLoadEmptyCraft(t *testing.T) {
	c, err := Load(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if c.Nodes == nil || c.Rods == nil {
		t.Error("expected non-nil empty collections")
	}
}

func TestLoadFileMissingIsNotFormatError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidFormat) {
		t.Error("missing file reported as invalid format")
	}
}

func TestKindText(t *testing.T) {
	for _, k := range RodKinds() {
		got, err := ParseRodKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseRodKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseRodKind("elastic"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseRodKind(elastic) = %v, want ErrInvalidFormat", err)
	}
	if Fixed.String() != "fixed" || Joint.String() != "joint" {
		t.Errorf("node kind names = %s, %s", Fixed, Joint)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range RodKinds() {
		if !k.Valid() {
			t.Errorf("%v.Valid() = false", k)
		}
	}
	if RodKind(9).Valid() {
		t.Error("RodKind(9).Valid() = true")
	}
	if !Fixed.Valid() || !Joint.Valid() || NodeKind(7).Valid() {
		t.Error("node kind validity wrong")
	}
}

func TestBounds(t *testing.T) {
	if _, _, ok := New().Bounds(); ok {
		t.Error("empty craft should have no bounds")
	}
	min, max, ok := sampleCraft().Bounds()
	if !ok || min != V(0, 0) || max != V(100, 100) {
		t.Errorf("Bounds() = %v, %v, %v", min, max, ok)
	}
}
