// Package export renders recorded runs to standalone files.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Palette colors successive series.
var Palette = []string{"#00ff00", "#ff8800", "#00aaff", "#ff44aa", "#ffee00", "#aa66ff"}

type Point struct {
	X, Y float64
}

// Series is one named line on a plot.
type Series struct {
	Name   string
	Points []Point
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

func boundsOf(series []Series) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, s := range series {
		for _, p := range s.Points {
			if math.IsNaN(p.Y) {
				continue
			}
			found = true
			b.minX, b.maxX = math.Min(b.minX, p.X), math.Max(b.maxX, p.X)
			b.minY, b.maxY = math.Min(b.minY, p.Y), math.Max(b.maxY, p.Y)
		}
	}
	if !found {
		return b, false
	}

	// Add padding
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// PlotSVG draws every series on shared axes. Points with a NaN Y break the
// line. It returns "" when there is nothing to draw.
func PlotSVG(series []Series, width, height int) string {
	b, ok := boundsOf(series)
	if !ok {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if b.minY < 0 && b.maxY > 0 {
		_, y0 := b.project(Point{Y: 0}, width, height)
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333"/>
`, y0, width, y0))
	}

	for i, s := range series {
		d := pathData(s.Points, b, width, height)
		if d == "" {
			continue
		}
		color := Palette[i%len(Palette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"><title>%s</title></path>
`, color, d, s.Name))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func pathData(points []Point, b bounds, width, height int) string {
	var sb strings.Builder
	pen := false
	for _, p := range points {
		if math.IsNaN(p.Y) {
			pen = false
			continue
		}
		x, y := b.project(p, width, height)
		if pen {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		} else {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			pen = true
		}
	}
	return sb.String()
}
