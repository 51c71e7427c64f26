// Package render draws finished episodes of the auv environment to
// image files. It consumes only the post-episode memory record, never
// live environment internals.
package render

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv"
)

const (
	width  int = 800
	height int = 800

	// margin in world units around the drawn geometry
	margin float64 = 20
)

var (
	pathColor     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	trackColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	obstacleColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Plot renders an episode memory record to a PNG file: the target path
// dashed, the realized track solid, and the obstacles as filled discs.
// The east axis maps to screen x and the north axis to screen y, so
// the image reads like a chart.
func Plot(mem auv.Memory, file string) error {
	if len(mem.Path) == 0 {
		return fmt.Errorf("plot: empty memory record")
	}

	view := bounds(mem)
	scale, offsetE, offsetN := fit(view)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	toScreen := func(p r2.Vec) (x, y float64) {
		// p.Y is east, p.X is north; screen y grows downward
		x = (p.Y - offsetE) * scale
		y = float64(height) - (p.X-offsetN)*scale
		return x, y
	}

	// Obstacles
	dc.SetColor(obstacleColor)
	for _, obst := range mem.Obstacles {
		x, y := toScreen(obst.Position)
		dc.DrawCircle(x, y, obst.Radius*scale)
		dc.Fill()
	}

	// Target path, dashed
	dc.SetColor(pathColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 2)
	drawPolyline(dc, mem.Path, toScreen)

	// Realized track, solid
	dc.SetColor(trackColor)
	dc.SetLineWidth(2)
	dc.SetDash()
	drawPolyline(dc, mem.PathTaken, toScreen)

	if err := dc.SavePNG(file); err != nil {
		return fmt.Errorf("plot: could not save %v: %v", file, err)
	}
	return nil
}

func drawPolyline(dc *gg.Context, points []r2.Vec,
	toScreen func(r2.Vec) (float64, float64)) {

	for i, p := range points {
		x, y := toScreen(p)
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	dc.Stroke()
}

type box struct {
	minN, maxN float64
	minE, maxE float64
}

// bounds returns the world-coordinate box containing all geometry of
// the record plus a margin
func bounds(mem auv.Memory) box {
	b := box{
		minN: mem.Path[0].X, maxN: mem.Path[0].X,
		minE: mem.Path[0].Y, maxE: mem.Path[0].Y,
	}
	grow := func(p r2.Vec, pad float64) {
		if p.X-pad < b.minN {
			b.minN = p.X - pad
		}
		if p.X+pad > b.maxN {
			b.maxN = p.X + pad
		}
		if p.Y-pad < b.minE {
			b.minE = p.Y - pad
		}
		if p.Y+pad > b.maxE {
			b.maxE = p.Y + pad
		}
	}

	for _, p := range mem.Path {
		grow(p, 0)
	}
	for _, p := range mem.PathTaken {
		grow(p, 0)
	}
	for _, obst := range mem.Obstacles {
		grow(obst.Position, obst.Radius)
	}

	b.minN -= margin
	b.maxN += margin
	b.minE -= margin
	b.maxE += margin
	return b
}

// fit computes the world-to-screen scale preserving aspect ratio
func fit(b box) (scale, offsetE, offsetN float64) {
	spanE := b.maxE - b.minE
	spanN := b.maxN - b.minN
	if spanE <= 0 {
		spanE = 1
	}
	if spanN <= 0 {
		spanN = 1
	}

	scaleE := float64(width) / spanE
	scaleN := float64(height) / spanN
	scale = scaleE
	if scaleN < scaleE {
		scale = scaleN
	}
	return scale, b.minE, b.minN
}
