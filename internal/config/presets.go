package config

import (
	"sort"

	"github.com/san-kum/craftsim/internal/craft"
	"github.com/san-kum/craftsim/internal/editor"
)

// Preset is a named starting craft.
type Preset struct {
	Description string
	build       func(b *builder)
}

var Presets = map[string]Preset{
	"pendulum": {
		Description: "single solid pendulum released from horizontal",
		build: func(b *builder) {
			pivot := b.node(400, 100, craft.Fixed)
			bob := b.node(550, 100, craft.Joint)
			b.rod(pivot, bob, craft.Solid)
		},
	},
	"double_pendulum": {
		Description: "two solid links hanging from one pivot",
		build: func(b *builder) {
			pivot := b.node(400, 100, craft.Fixed)
			mid := b.node(500, 100, craft.Joint)
			tip := b.node(600, 100, craft.Joint)
			b.rod(pivot, mid, craft.Solid)
			b.rod(mid, tip, craft.Solid)
		},
	},
	"rope_chain": {
		Description: "rope links slung between two anchors",
		build: func(b *builder) {
			prev := b.node(150, 150, craft.Fixed)
			for i := 1; i < 10; i++ {
				kind := craft.Joint
				if i == 9 {
					kind = craft.Fixed
				}
				n := b.node(150+float64(i)*50, 150, kind)
				b.rod(prev, n, craft.Rope)
				prev = n
			}
		},
	},
	"bridge": {
		Description: "pratt truss between two fixed abutments",
		build: func(b *builder) {
			const panels = 6
			const width = 80.0
			var bottom, top [panels + 1]int
			for i := 0; i <= panels; i++ {
				kind := craft.Joint
				if i == 0 || i == panels {
					kind = craft.Fixed
				}
				x := 160 + float64(i)*width
				bottom[i] = b.node(x, 400, kind)
				top[i] = b.node(x, 320, craft.Joint)
			}
			for i := 0; i <= panels; i++ {
				b.rod(bottom[i], top[i], craft.Solid)
				if i == panels {
					break
				}
				b.rod(bottom[i], bottom[i+1], craft.Solid)
				b.rod(top[i], top[i+1], craft.Solid)
				if i < panels/2 {
					b.rod(bottom[i+1], top[i], craft.Solid)
				} else {
					b.rod(bottom[i], top[i+1], craft.Solid)
				}
			}
		},
	},
	"spring_box": {
		Description: "braced box on two spring legs, dropped onto the floor",
		build: func(b *builder) {
			tl := b.node(350, 300, craft.Joint)
			tr := b.node(450, 300, craft.Joint)
			bl := b.node(350, 400, craft.Joint)
			br := b.node(450, 400, craft.Joint)
			for _, r := range [][2]int{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}, {tl, br}, {tr, bl}} {
				b.rod(r[0], r[1], craft.Solid)
			}
			lf := b.node(350, 500, craft.Joint)
			rf := b.node(450, 500, craft.Joint)
			b.rod(bl, lf, craft.Spring)
			b.rod(br, rf, craft.Spring)
			b.rod(lf, br, craft.Spring)
			b.rod(rf, bl, craft.Spring)
		},
	},
	"walker": {
		Description: "triangular chassis pushed along by two piston legs",
		build: func(b *builder) {
			a := b.node(300, 450, craft.Joint)
			c := b.node(450, 450, craft.Joint)
			top := b.node(375, 380, craft.Joint)
			b.rod(a, c, craft.Solid)
			b.rod(a, top, craft.Solid)
			b.rod(c, top, craft.Solid)

			lf := b.node(250, 600, craft.Joint)
			rf := b.node(500, 600, craft.Joint)
			b.piston(top, lf, 200, 260)
			b.piston(top, rf, 180, 280)
			b.rod(a, lf, craft.Rope)
			b.rod(c, rf, craft.Rope)
		},
	},
}

// GetPreset builds a fresh craft for name, or nil if there is no such
// preset.
func GetPreset(name string) *craft.Craft {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	b := &builder{e: editor.New(nil)}
	p.build(b)
	if b.err != nil {
		return nil
	}
	return b.e.Craft()
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builder records the first editor error so preset tables stay flat.
type builder struct {
	e   *editor.Editor
	err error
}

func (b *builder) node(x, y float64, kind craft.NodeKind) int {
	return b.e.AddNode(craft.V(x, y), kind)
}

func (b *builder) rod(a, c int, kind craft.RodKind) {
	if _, err := b.e.AddRod(a, c, kind); err != nil && b.err == nil {
		b.err = err
	}
}

func (b *builder) piston(a, c int, min, max float64) {
	if _, err := b.e.AddPiston(a, c, min, max); err != nil && b.err == nil {
		b.err = err
	}
}
