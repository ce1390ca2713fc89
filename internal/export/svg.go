// Package export renders recorded trajectories for use outside the terminal.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

var ErrTooFewPoints = errors.New("export: trajectory needs at least two finite points")

type SVGOptions struct {
	WorldScale float64 // px per metre
	Margin     float64 // px
	Stroke     string
	Background string
	GridEvery  float64 // m, 0 disables the grid
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		WorldScale: 30,
		Margin:     20,
		Stroke:     "#00ff88",
		Background: "#0a0a0a",
		GridEvery:  10,
	}
}

// TrajectorySVG writes the ground track of states as an SVG path. World y
// maps to image y unchanged. The start is marked with a circle and the last
// pose with a heading tick one wheelbase long. Non-finite states are skipped.
func TrajectorySVG(w io.Writer, states []dynamo.State, opts SVGOptions) error {
	if opts.WorldScale <= 0 {
		opts.WorldScale = DefaultSVGOptions().WorldScale
	}

	pts := make([]dynamo.State, 0, len(states))
	for _, s := range states {
		if s.IsValid() {
			pts = append(pts, s)
		}
	}
	if len(pts) < 2 {
		return ErrTooFewPoints
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, s := range pts {
		minX, maxX = math.Min(minX, s.X), math.Max(maxX, s.X)
		minY, maxY = math.Min(minY, s.Y), math.Max(maxY, s.Y)
	}

	scale, margin := opts.WorldScale, opts.Margin
	width := (maxX-minX)*scale + 2*margin
	height := (maxY-minY)*scale + 2*margin
	px := func(x float64) float64 { return (x-minX)*scale + margin }
	py := func(y float64) float64 { return (y-minY)*scale + margin }

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, opts.Background)

	if g := opts.GridEvery; g > 0 {
		fmt.Fprintf(bw, `<g stroke="#222" stroke-width="0.5">`+"\n")
		for x := math.Ceil(minX/g) * g; x <= maxX; x += g {
			fmt.Fprintf(bw, `<line x1="%.1f" y1="0" x2="%.1f" y2="%.0f"/>`+"\n", px(x), px(x), height)
		}
		for y := math.Ceil(minY/g) * g; y <= maxY; y += g {
			fmt.Fprintf(bw, `<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f"/>`+"\n", py(y), width, py(y))
		}
		fmt.Fprintf(bw, "</g>\n")
	}

	fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="M%.1f,%.1f`, opts.Stroke, px(pts[0].X), py(pts[0].Y))
	for _, s := range pts[1:] {
		fmt.Fprintf(bw, " L%.1f,%.1f", px(s.X), py(s.Y))
	}
	fmt.Fprintf(bw, "\"/>\n")

	start, end := pts[0], pts[len(pts)-1]
	fmt.Fprintf(bw, `<circle cx="%.1f" cy="%.1f" r="4" fill="#ffcc00"/>`+"\n", px(start.X), py(start.Y))
	sin, cos := math.Sincos(end.Yaw)
	fmt.Fprintf(bw, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ff4444" stroke-width="3"/>`+"\n",
		px(end.X), py(end.Y), px(end.X)+cos*1.05*scale, py(end.Y)+sin*1.05*scale)

	fmt.Fprintf(bw, "</svg>\n")
	return bw.Flush()
}
