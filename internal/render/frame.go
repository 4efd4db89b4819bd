// Package render turns simulation state into images: scatter frames of the
// agent population, S/I/R trajectory charts, and animated GIF/AVI output.
// It only reads engine accessors and never mutates simulation state.
package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"contagion/internal/sim"
)

var healthColors = map[sim.Health]color.RGBA{
	sim.Susceptible: {R: 52, G: 152, B: 219, A: 255},
	sim.Infected:    {R: 231, G: 76, B: 60, A: 255},
	sim.Recovered:   {R: 46, G: 204, B: 113, A: 255},
}

// FrameOptions tunes scatter frame rendering.
type FrameOptions struct {
	// Width is the square frame size in pixels. Zero means 600.
	Width int

	// DotRadius is the agent dot radius in pixels. Zero means 3.
	DotRadius int
}

// Frame draws the agent population at one instant: dots colored by health
// state on a white background, with a stats overlay in the top-left corner.
func Frame(agents []sim.Agent, domain, now float64, counts sim.Sample, opts FrameOptions) *image.RGBA {
	width := opts.Width
	if width <= 0 {
		width = 600
	}
	radius := opts.DotRadius
	if radius <= 0 {
		radius = 3
	}

	img := image.NewRGBA(image.Rect(0, 0, width, width))
	fillBackground(img, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	scale := float64(width) / domain
	for i := range agents {
		// Image rows grow downward, domain y grows upward.
		cx := int(agents[i].X * scale)
		cy := int(float64(width) - agents[i].Y*scale)
		drawDot(img, cx, cy, radius, healthColors[agents[i].Health])
	}

	total := counts.S + counts.I + counts.R
	if total > 0 {
		black := color.RGBA{A: 255}
		addLabel(img, 8, 16, fmt.Sprintf("t = %.1f", now), black)
		addLabel(img, 8, 30, fmt.Sprintf("S: %d (%.1f%%)", counts.S, pct(counts.S, total)), black)
		addLabel(img, 8, 44, fmt.Sprintf("I: %d (%.1f%%)", counts.I, pct(counts.I, total)), black)
		addLabel(img, 8, 58, fmt.Sprintf("R: %d (%.1f%%)", counts.R, pct(counts.R, total)), black)
	}
	return img
}

func pct(part, total int) float64 {
	return 100 * float64(part) / float64(total)
}

func fillBackground(img *image.RGBA, bg color.Color) {
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.Set(x, y, bg)
		}
	}
}

func drawDot(img *image.RGBA, cx, cy, radius int, col color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, col)
			}
		}
	}
}

// addLabel draws a text label onto an image at the specified position.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(x),
			Y: fixed.I(y),
		},
	}
	d.DrawString(label)
}
