package experiment

import (
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// Dimensions of images drawn by Render, in pixels
const (
	renderWidth  = 800
	renderHeight = 400
	renderMargin = 50
)

// seriesColours are the colours of the bars of each evaluator. The
// exact state values are always drawn in black.
var seriesColours = []color.RGBA{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
}

// Render draws a bar chart of the final state values estimated by each
// result, next to the exact state values when they are known, and
// writes it to w as a PNG image. Bars are grouped by state and labelled
// with the names in states.
func Render(results []Result, states []string, w io.Writer) error {
	if len(results) == 0 || len(states) == 0 {
		return errors.New("render: nothing to draw")
	}

	// Each series is drawn as one bar per state
	series := make([][]float64, 0, len(results)+1)
	names := make([]string, 0, len(results)+1)
	var truth []float64
	for _, r := range results {
		if len(r.Values) != len(states) {
			return errors.Errorf("render: %q has %d values for %d states",
				r.Name, len(r.Values), len(states))
		}
		series = append(series, r.Values)
		names = append(names, r.Name)
		if truth == nil {
			truth = r.Truth
		}
	}
	if truth != nil {
		if len(truth) != len(states) {
			return errors.Errorf("render: %d exact values for %d states",
				len(truth), len(states))
		}
		series = append(series, truth)
		names = append(names, "exact")
	}

	// The vertical axis always includes 0
	lo, hi := 0.0, 0.0
	for _, values := range series {
		for _, v := range values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}

	plotH := float64(renderHeight - 2*renderMargin)
	y := func(v float64) float64 {
		return renderMargin + (hi-v)/(hi-lo)*plotH
	}

	dc := gg.NewContext(renderWidth, renderHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	groupW := float64(renderWidth-2*renderMargin) / float64(len(states))
	barW := 0.8 * groupW / float64(len(series))
	for s, state := range states {
		x0 := renderMargin + float64(s)*groupW + 0.1*groupW
		for i, values := range series {
			if i == len(results) {
				dc.SetRGB(0, 0, 0)
			} else {
				dc.SetColor(seriesColours[i%len(seriesColours)])
			}

			top, bottom := y(math.Max(values[s], 0)), y(math.Min(values[s], 0))
			dc.DrawRectangle(x0+float64(i)*barW, top, barW, bottom-top)
			dc.Fill()
		}

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(state, x0+0.4*groupW, renderHeight-renderMargin/2,
			0.5, 0.5)
	}

	// Zero line
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	dc.DrawLine(renderMargin, y(0), renderWidth-renderMargin, y(0))
	dc.Stroke()

	// Legend
	for i, name := range names {
		if i == len(results) {
			dc.SetRGB(0, 0, 0)
		} else {
			dc.SetColor(seriesColours[i%len(seriesColours)])
		}
		x := float64(renderMargin + i*120)
		dc.DrawRectangle(x, renderMargin/2-5, 10, 10)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(name, x+15, renderMargin/2, 0, 0.5)
	}

	if err := dc.EncodePNG(w); err != nil {
		return errors.Wrap(err, "render: could not encode image")
	}
	return nil
}
