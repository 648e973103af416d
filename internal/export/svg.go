package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/craftsim/internal/craft"
)

// CraftToSVG draws rods as lines colored by kind and nodes as dots, fixed
// nodes as squares. Ropes are dashed.
func CraftToSVG(c *craft.Craft, opts Options) (string, error) {
	t, err := fit(c, opts)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, background))

	if opts.ShowFloor {
		_, y := t.apply(craft.V(0, opts.Floor))
		sb.WriteString(fmt.Sprintf(`<line class="floor" x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="2"/>
`, y, opts.Width, y, floorColor))
	}

	if path := trailPath(t, opts.Trail); path != "" {
		sb.WriteString(fmt.Sprintf(`<path class="trail" fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, trailColor, path))
	}

	for _, r := range c.Rods {
		x1, y1 := t.apply(c.Nodes[r.A].Pos)
		x2, y2 := t.apply(c.Nodes[r.B].Pos)
		dash := ""
		if r.Kind == craft.Rope {
			dash = ` stroke-dasharray="6 4"`
		}
		sb.WriteString(fmt.Sprintf(`<line class="rod %s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="3"%s/>
`, r.Kind, x1, y1, x2, y2, rodColors[r.Kind], dash))
	}

	for i, n := range c.Nodes {
		x, y := t.apply(n.Pos)
		if n.Kind == craft.Fixed {
			sb.WriteString(fmt.Sprintf(`<rect class="node fixed" x="%.1f" y="%.1f" width="10" height="10" fill="%s"/>
`, x-5, y-5, fixedColor))
		} else {
			sb.WriteString(fmt.Sprintf(`<circle class="node joint" cx="%.1f" cy="%.1f" r="5" fill="%s"/>
`, x, y, jointColor))
		}
		if opts.Labels {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11">%d</text>
`, x+7, y-7, labelColor, i))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// TrajectoryToSVG draws a single node path scaled to fill the image.
func TrajectoryToSVG(points []craft.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	c := &craft.Craft{Nodes: []craft.Node{{Pos: points[0]}}}
	opts := Options{Width: width, Height: height, Padding: float64(min(width, height)) * 0.05, Trail: points}
	t, err := fit(c, opts)
	if err != nil {
		return ""
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
</svg>
`, width, height, width, height, background, strokeColor, trailPath(t, points))
}

func trailPath(t transform, points []craft.Vec2) string {
	if len(points) < 2 {
		return ""
	}
	var sb strings.Builder
	for i, p := range points {
		x, y := t.apply(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	return sb.String()
}
