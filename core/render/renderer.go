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

// Compositing pipeline: imagery layers, event annotations and decorations
// drawn onto one output raster for one observation timestamp.
package render

import (
	"bytes"
	"image"
	"math"
	"os"
	"time"

	"github.com/solarview/core/core/errorwithstatus"
	"github.com/solarview/core/core/eventprovider"
	"github.com/solarview/core/core/events"
	"github.com/solarview/core/core/extractor"
	"github.com/solarview/core/core/fileaccess"
	"github.com/solarview/core/core/framestore"
	"github.com/solarview/core/core/layers"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/solargeom"
)

// ScaleIndicator - which size reference to draw, if any
type ScaleIndicator int

const (
	ScaleNone ScaleIndicator = iota
	ScaleEarth
	ScaleBar
)

// VideoMarker - a labelled point pinned by a shared-video author, arcsec
type VideoMarker struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// TrajectoryPoint - a celestial body position at one time, arcsec
type TrajectoryPoint struct {
	Time time.Time `json:"time"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// BodyTrajectory - positions of one celestial body across the movie span
type BodyTrajectory struct {
	Name   string            `json:"name"`
	Points []TrajectoryPoint `json:"points"`
}

// RenderOptions - per-frame toggles and output settings. Decoration stages
// run in a fixed relative order regardless of which are enabled.
type RenderOptions struct {
	OutputPath  string
	HighQuality bool

	// Downscale preset applied after compositing: 720p/1080p/1440p/4k.
	// Empty means output at native ROI resolution.
	MovieSize string

	// When set, annotation positions are corrected for how far the base
	// viewport has rotated since MovieStartTime
	FollowViewport bool
	MovieStartTime time.Time

	SharedVideoMarkers  []VideoMarker
	CelestialBodies     []BodyTrajectory
	CelestialBodyLabels bool
	ScaleIndicator      ScaleIndicator
	Watermark           bool
	EclipseOverlay      bool
}

// CompositeRenderer - builds one output frame from N imagery layers plus
// selected events and decorations. Safe for concurrent use from separate
// invocations as long as each owns its own output path.
type CompositeRenderer struct {
	Frames  framestore.FrameStore
	Events  eventprovider.EventProvider
	Extract extractor.FrameExtractor

	// Where rendered polygon-mask files live
	Masks      fileaccess.FileAccess
	MaskBucket string

	Log logger.ILogger

	// Overridable so tests can capture draw calls
	NewSurface func(width int, height int, highQuality bool) DrawingSurface
}

type builtLayer struct {
	layer layers.Layer
	img   image.Image
}

// RenderFrame - runs the full pipeline for one observation timestamp and
// writes the result to opts.OutputPath. Returns the output path.
//
// A nil selection tree or a zero obsTime skips the event stages entirely.
func (r *CompositeRenderer) RenderFrame(layerList []layers.Layer, tree *events.SelectionTree, obsTime time.Time, roi region.RegionOfInterest, opts RenderOptions) (string, error) {
	surface := r.makeSurface(roi.PixelWidth(), roi.PixelHeight(), opts.HighQuality)

	// One offset per frame, applied uniformly to everything drawn
	offX, offY := 0.0, 0.0
	if opts.FollowViewport && !opts.MovieStartTime.IsZero() {
		cx := (roi.Left + roi.Right) / 2
		cy := (roi.Top + roi.Bottom) / 2
		offX, offY = solargeom.RotationOffset(cx, cy, opts.MovieStartTime, obsTime)
	}

	built := []builtLayer{}
	for _, l := range layerList {
		img, resolved, err := r.buildLayerImage(l, obsTime, roi, offX, offY)
		if err != nil {
			r.Log.Errorf("failed to build layer for source %v at %v: %v", l.SourceID, obsTime.UTC(), err)
			continue
		}
		built = append(built, builtLayer{layer: resolved, img: img})
	}

	if len(built) == 0 {
		return "", errorwithstatus.MakeLayerBuildError()
	}

	for _, b := range sortBuiltLayers(built) {
		surface.CompositeImage(b.img, ModeNormal, 0, 0, b.layer.Opacity)
	}

	if tree != nil && !obsTime.IsZero() {
		r.drawEvents(surface, tree, obsTime, roi, offX, offY)
	}

	r.drawDecorations(surface, built, obsTime, roi, offX, offY, opts)

	if w, h, ok := MovieSizeDimensions(opts.MovieSize); ok {
		surface.Resize(w, h)
	}

	err := surface.Write(opts.OutputPath)
	if err != nil {
		return "", err
	}

	return opts.OutputPath, nil
}

func (r *CompositeRenderer) makeSurface(width int, height int, highQuality bool) DrawingSurface {
	if r.NewSurface != nil {
		return r.NewSurface(width, height, highQuality)
	}
	s := MakeRGBASurface(width, height)
	s.HighQuality = highQuality
	return s
}

// buildLayerImage - nearest frame lookup, region extraction and optional
// differencing for one layer. The returned layer copy has its detector family
// and compositing order resolved from the frame's provenance.
func (r *CompositeRenderer) buildLayerImage(l layers.Layer, obsTime time.Time, roi region.RegionOfInterest, offX float64, offY float64) (image.Image, layers.Layer, error) {
	frame, err := r.Frames.GetFrame(l.SourceID, obsTime)
	if err != nil {
		return nil, l, err
	}

	l.Family = layers.LookupFamily(frame.Mission, frame.Instrument, frame.Detector)
	if l.Order <= 1 {
		l.Order = l.Family.Capabilities().LayerOrder
	}

	// When following the viewport the cutout region itself tracks the
	// rotation, so the imagery stays put relative to the annotations
	layerROI := roi
	layerROI.Left += offX
	layerROI.Right += offX
	layerROI.Top += offY
	layerROI.Bottom += offY

	img, err := r.extractDecoded(frame, layerROI)
	if err != nil {
		return nil, l, err
	}

	if l.DiffMode != layers.DiffNone {
		cmpTime := l.ComparisonTime(obsTime)
		cmpFrame, err := r.Frames.GetFrame(l.SourceID, cmpTime)
		if err != nil {
			return nil, l, err
		}
		cmpImg, err := r.extractDecoded(cmpFrame, layerROI)
		if err != nil {
			return nil, l, err
		}
		img = differenceImage(img, cmpImg)
	}

	return img, l, nil
}

// extractDecoded - runs the codec for the region, decodes the scratch file
// and removes it. The scratch file never outlives this call.
func (r *CompositeRenderer) extractDecoded(frame *framestore.Frame, roi region.RegionOfInterest) (image.Image, error) {
	scaleFactor := roi.Scale / frame.Scale

	path, err := r.Extract.ExtractRegion(frame.Filepath, roi, scaleFactor)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// differenceImage - per-pixel absolute difference of two extracted layer
// images, used for running and base difference modes
func differenceImage(a image.Image, b image.Image) image.Image {
	bounds := a.Bounds()
	out := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ar, ag, ab, _ := a.At(x, y).RGBA()
			br, bg, bb, _ := b.At(x, y).RGBA()
			out.SetRGBA(x, y, rgba(
				absDiff8(uint8(ar>>8), uint8(br>>8)),
				absDiff8(uint8(ag>>8), uint8(bg>>8)),
				absDiff8(uint8(ab>>8), uint8(bb>>8)),
				255))
		}
	}

	return out
}

// sortBuiltLayers - bottom-to-top compositing order. Base imagery (order 1)
// first in request order, then higher orders ascending, so coronagraphs and
// other annulus products always sit above full-disk imagery.
func sortBuiltLayers(built []builtLayer) []builtLayer {
	result := []builtLayer{}
	maxOrder := 1
	for _, b := range built {
		if b.layer.Order <= 1 {
			result = append(result, b)
		}
		if b.layer.Order > maxOrder {
			maxOrder = b.layer.Order
		}
	}
	for order := 2; order <= maxOrder; order++ {
		for _, b := range built {
			if b.layer.Order == order {
				result = append(result, b)
			}
		}
	}
	return result
}

// drawEvents - fetch, rotate, normalise and filter events for this frame,
// then draw them in two full passes: every polygon first, then every marker
// and label. A polygon must never cover another event's marker.
//
// Provider failures are absorbed with a log line - the imagery frame is still
// valid without its annotations.
func (r *CompositeRenderer) drawEvents(surface DrawingSurface, tree *events.SelectionTree, obsTime time.Time, roi region.RegionOfInterest, offX float64, offY float64) {
	raw, err := r.Events.GetEventsForObservation(obsTime, nil)
	if err != nil {
		r.Log.Errorf("failed to read events for %v: %v", obsTime.UTC(), err)
		return
	}

	frms, frmOrder, err := r.Events.GetFRMs(obsTime, nil)
	if err != nil {
		r.Log.Errorf("failed to read FRMs for %v: %v", obsTime.UTC(), err)
		return
	}

	// Rotate each event to the observation time. Features that have rotated
	// past the limb come back NaN and are dropped one at a time, never
	// aborting the frame.
	rotated := []events.Event{}
	for _, ev := range raw {
		x, y := solargeom.DifferentialRotate(ev.HPCX, ev.HPCY, ev.StartTime, obsTime)
		if math.IsNaN(x) || math.IsNaN(y) {
			r.Log.Debugf("dropping far-side event %v", ev.ID)
			continue
		}
		ev.FinalX = x - offX
		ev.FinalY = y - offY
		rotated = append(rotated, ev)
	}

	categories := events.Normalize(events.NormalizeFRMs(frms, frmOrder), rotated, obsTime)
	selected := events.SelectEvents(categories, tree)

	for i := range selected {
		r.drawEventPolygon(surface, &selected[i], roi, offX, offY)
	}

	for i := range selected {
		r.drawEventMarker(surface, &selected[i], roi)
	}
}

// drawEventPolygon - prefers the pre-rendered mask file; a missing mask is
// tolerated (the marker pass still runs for this event). Falls back to
// filling the boundary vertices when no mask was ever rendered.
func (r *CompositeRenderer) drawEventPolygon(surface DrawingSurface, ev *events.Event, roi region.RegionOfInterest, offX float64, offY float64) {
	if ev.PolygonURL != "" {
		data, err := r.Masks.ReadObject(r.MaskBucket, ev.PolygonURL)
		if err != nil {
			r.Log.Debugf("polygon mask %v not available, skipping: %v", ev.PolygonURL, err)
			return
		}

		mask, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			r.Log.Debugf("polygon mask %v not decodable, skipping: %v", ev.PolygonURL, err)
			return
		}

		px, py := roi.PixelPos(float64(ev.PolygonOffsetX)-offX, float64(ev.PolygonOffsetY)-offY)
		surface.CompositeImage(mask, ModeNormal, px, py, 100)
		return
	}

	if len(ev.Polygon) < 3 {
		return
	}

	pts := make([]image.Point, 0, len(ev.Polygon))
	for _, p := range ev.Polygon {
		px, py := roi.PixelPos(p.X-offX, p.Y-offY)
		pts = append(pts, image.Pt(px, py))
	}

	fill := eventColor(ev.EventType)
	fill.A = 90
	surface.DrawPolygon(pts, fill)
}

func (r *CompositeRenderer) drawEventMarker(surface DrawingSurface, ev *events.Event, roi region.RegionOfInterest) {
	px, py := roi.PixelPos(ev.FinalX, ev.FinalY)

	drawDiamond(surface, px, py, 5, eventColor(ev.EventType))

	if ev.LabelVisible {
		for i, line := range ev.LabelLines {
			surface.AnnotateText(px+8, py+4+i*13, line, 10, colorWhite, colorBlack)
		}
	}
}
