package export

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/san-kum/craftsim/internal/craft"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// CraftToPNG renders c the same way as CraftToSVG into a PNG stream.
func CraftToPNG(w io.Writer, c *craft.Craft, opts Options) error {
	dc, err := render(c, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func SavePNG(path string, c *craft.Craft, opts Options) error {
	dc, err := render(c, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func render(c *craft.Craft, opts Options) (*gg.Context, error) {
	t, err := fit(c, opts)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetHexColor(background)
	dc.Clear()

	if opts.ShowFloor {
		_, y := t.apply(craft.V(0, opts.Floor))
		dc.SetHexColor(floorColor)
		dc.SetLineWidth(2)
		dc.DrawLine(0, y, float64(opts.Width), y)
		dc.Stroke()
	}

	if len(opts.Trail) > 1 {
		dc.SetHexColor(trailColor)
		dc.SetLineWidth(1.5)
		for i, p := range opts.Trail {
			x, y := t.apply(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	dc.SetLineWidth(3)
	for _, r := range c.Rods {
		x1, y1 := t.apply(c.Nodes[r.A].Pos)
		x2, y2 := t.apply(c.Nodes[r.B].Pos)
		dc.SetHexColor(rodColors[r.Kind])
		if r.Kind == craft.Rope {
			dc.SetDash(6, 4)
		}
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		dc.SetDash()
	}

	for _, n := range c.Nodes {
		x, y := t.apply(n.Pos)
		if n.Kind == craft.Fixed {
			dc.SetHexColor(fixedColor)
			dc.DrawRectangle(x-5, y-5, 10, 10)
		} else {
			dc.SetHexColor(jointColor)
			dc.DrawCircle(x, y, 5)
		}
		dc.Fill()
	}

	if opts.Labels {
		face, err := monoFace(11)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		dc.SetHexColor(labelColor)
		for i, n := range c.Nodes {
			x, y := t.apply(n.Pos)
			dc.DrawString(fmt.Sprint(i), x+7, y-7)
		}
		legend(dc, c)
	}

	return dc, nil
}

func monoFace(size float64) (font.Face, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	return truetype.NewFace(ttfFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func legend(dc *gg.Context, c *craft.Craft) {
	y := 16.0
	dc.SetHexColor(labelColor)
	dc.DrawString(fmt.Sprintf("nodes %d  rods %d", c.NodeCount(), c.RodCount()), 8, y)
	for _, kind := range craft.RodKinds() {
		y += 14
		dc.SetHexColor(rodColors[kind])
		dc.DrawLine(8, y-4, 28, y-4)
		dc.Stroke()
		dc.DrawString(kind.String(), 34, y)
	}
}
