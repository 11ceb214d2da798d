// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/solargeom"
)

var (
	colorWhite = color.RGBA{255, 255, 255, 255}
	colorBlack = color.RGBA{0, 0, 0, 255}
)

// Solar and Earth physical radii in km, used only for to-scale decorations
const (
	sunRadiusKm   = 696000.0
	earthRadiusKm = 6371.0
)

func rgba(r uint8, g uint8, b uint8, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}

// Marker colours per event-type pin, matching the colours clients assign to
// the same pins. Unknown pins get grey.
var eventColors = map[string]color.RGBA{
	"AR": {255, 140, 0, 255},
	"CH": {128, 200, 255, 255},
	"FL": {255, 64, 64, 255},
	"FI": {160, 96, 255, 255},
	"FA": {160, 96, 255, 255},
	"CE": {64, 255, 128, 255},
	"SG": {255, 255, 96, 255},
	"SS": {255, 192, 203, 255},
	"EF": {0, 206, 209, 255},
}

func eventColor(pin string) color.RGBA {
	if c, ok := eventColors[pin]; ok {
		return c
	}
	return rgba(160, 160, 160, 255)
}

func drawDiamond(surface DrawingSurface, x int, y int, radius int, c color.RGBA) {
	surface.DrawPolygon([]image.Point{
		{x, y - radius},
		{x + radius, y},
		{x, y + radius},
		{x - radius, y},
	}, c)
}

// drawCircle - filled circle approximated as a 24-gon, plenty at the radii
// decorations use
func drawCircle(surface DrawingSurface, x int, y int, radius int, c color.RGBA) {
	const segments = 24
	pts := make([]image.Point, 0, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / segments
		pts = append(pts, image.Pt(
			x+int(math.Round(float64(radius)*math.Cos(angle))),
			y+int(math.Round(float64(radius)*math.Sin(angle)))))
	}
	surface.DrawPolygon(pts, c)
}

// drawDecorations - optional overlay stages. Each is independently toggled
// but when several are on they always draw in this relative order.
func (r *CompositeRenderer) drawDecorations(surface DrawingSurface, built []builtLayer, obsTime time.Time, roi region.RegionOfInterest, offX float64, offY float64, opts RenderOptions) {
	for _, m := range opts.SharedVideoMarkers {
		px, py := roi.PixelPos(m.X-offX, m.Y-offY)
		drawDiamond(surface, px, py, 6, rgba(255, 255, 255, 255))
		if m.Label != "" {
			surface.AnnotateText(px+9, py+4, m.Label, 10, colorWhite, colorBlack)
		}
	}

	for _, body := range opts.CelestialBodies {
		r.drawTrajectory(surface, body, roi, offX, offY, opts.CelestialBodyLabels)
	}

	switch opts.ScaleIndicator {
	case ScaleEarth:
		r.drawEarthScale(surface, obsTime, roi)
	case ScaleBar:
		r.drawScaleBar(surface, obsTime, roi)
	}

	if opts.Watermark {
		r.drawWatermark(surface, built, obsTime)
	}

	if opts.EclipseOverlay {
		r.drawEclipseOverlay(surface, obsTime, roi)
	}
}

// drawTrajectory - dotted path of a body across the movie span, with the
// body itself drawn larger at its position nearest the frame time
func (r *CompositeRenderer) drawTrajectory(surface DrawingSurface, body BodyTrajectory, roi region.RegionOfInterest, offX float64, offY float64, labels bool) {
	if len(body.Points) == 0 {
		return
	}

	for _, p := range body.Points {
		px, py := roi.PixelPos(p.X-offX, p.Y-offY)
		drawCircle(surface, px, py, 1, rgba(200, 200, 200, 200))
	}

	last := body.Points[len(body.Points)-1]
	px, py := roi.PixelPos(last.X-offX, last.Y-offY)
	drawCircle(surface, px, py, 3, colorWhite)

	if labels && body.Name != "" {
		surface.AnnotateText(px+6, py-6, body.Name, 10, colorWhite, colorBlack)
	}
}

// drawEarthScale - an Earth disk at true angular scale in the bottom left,
// so viewers can judge feature sizes. The apparent solar radius varies with
// the Sun-Earth distance so the Earth size does too.
func (r *CompositeRenderer) drawEarthScale(surface DrawingSurface, obsTime time.Time, roi region.RegionOfInterest) {
	sunArcsec := solargeom.RSunReferenceArcsec / solargeom.SunEarthDistanceAU(obsTime)
	earthArcsec := sunArcsec * earthRadiusKm / sunRadiusKm
	radiusPx := int(math.Round(earthArcsec / roi.Scale))
	if radiusPx < 1 {
		radiusPx = 1
	}

	bounds := surface.Bounds()
	cx := 20 + radiusPx
	cy := bounds.Max.Y - 30

	drawCircle(surface, cx, cy, radiusPx, rgba(80, 140, 255, 255))
	surface.AnnotateText(cx+radiusPx+6, cy+4, "Earth to scale", 10, colorWhite, colorBlack)
}

// drawScaleBar - a horizontal bar spanning 100,000 km at the Sun's distance
func (r *CompositeRenderer) drawScaleBar(surface DrawingSurface, obsTime time.Time, roi region.RegionOfInterest) {
	const barKm = 100000.0

	// km per arcsec at the Sun, from the reference solar radius
	sunArcsec := solargeom.RSunReferenceArcsec / solargeom.SunEarthDistanceAU(obsTime)
	kmPerArcsec := sunRadiusKm / sunArcsec

	lengthPx := int(math.Round(barKm / kmPerArcsec / roi.Scale))
	if lengthPx < 2 {
		lengthPx = 2
	}

	bounds := surface.Bounds()
	x := 20
	y := bounds.Max.Y - 30

	surface.DrawPolygon([]image.Point{
		{x, y - 1}, {x + lengthPx, y - 1}, {x + lengthPx, y + 1}, {x, y + 1},
	}, colorWhite)
	surface.AnnotateText(x, y-8, "100,000 km", 10, colorWhite, colorBlack)
}

// drawWatermark - data credits for every composited layer plus the frame
// timestamp, bottom right
func (r *CompositeRenderer) drawWatermark(surface DrawingSurface, built []builtLayer, obsTime time.Time) {
	labels := []string{}
	seen := map[string]bool{}
	for _, b := range built {
		label := b.layer.Family.Capabilities().WatermarkLabel
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	lines := []string{obsTime.UTC().Format("2006-01-02 15:04:05 UTC")}
	if len(labels) > 0 {
		lines = append(lines, fmt.Sprintf("Courtesy of %v", strings.Join(labels, ", ")))
	}

	bounds := surface.Bounds()
	y := bounds.Max.Y - 8 - (len(lines)-1)*13
	for _, line := range lines {
		x := bounds.Max.X - 10 - 7*len(line)
		surface.AnnotateText(x, y, line, 10, colorWhite, colorBlack)
		y += 13
	}
}

// drawEclipseOverlay - occults the photosphere with a black disk of one
// apparent solar radius, the way an eclipse reveals the corona. Only useful
// over coronagraph layers but drawn wherever requested.
func (r *CompositeRenderer) drawEclipseOverlay(surface DrawingSurface, obsTime time.Time, roi region.RegionOfInterest) {
	sunArcsec := solargeom.RSunReferenceArcsec / solargeom.SunEarthDistanceAU(obsTime)

	cx, cy := roi.PixelPos(0, 0)
	radiusPx := int(math.Round(sunArcsec / roi.Scale))

	drawCircle(surface, cx, cy, radiusPx, colorBlack)
}
