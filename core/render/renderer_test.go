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
	"image"
	"image/color"
	"image/png"
	"os"
	"path"
	"testing"
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
)

var testObsTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func writeTestPNG(t *testing.T, dir string, name string, w int, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{128, 128, 128, 255})
		}
	}

	p := path.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("%v", err)
	}
	return p
}

func makeTestRenderer(frames []framestore.Frame, queuedExtracts []string) *CompositeRenderer {
	return &CompositeRenderer{
		Frames:     &framestore.MemFrameStore{Frames: frames},
		Events:     &eventprovider.MemEventProvider{},
		Extract:    &extractor.MockExtractor{QueuedResults: queuedExtracts},
		Masks:      &fileaccess.MemFileAccess{},
		MaskBucket: "masks",
		Log:        &logger.NullLogger{},
	}
}

func testFrame(sourceId int) framestore.Frame {
	return framestore.Frame{
		SourceID:   sourceId,
		Timestamp:  testObsTime,
		Filepath:   "/data/frame.jp2",
		Width:      4096,
		Height:     4096,
		Scale:      0.6,
		Mission:    "SDO",
		Instrument: "AIA",
		Detector:   "AIA",
	}
}

func Test_RenderFrame_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 100, 100)

	r := makeTestRenderer([]framestore.Frame{testFrame(8)}, []string{extracted})

	roi, err := region.NewRegionOfInterest(-100, -100, 100, 100, 2.0)
	if err != nil {
		t.Fatalf("%v", err)
	}

	outPath := path.Join(dir, "frame.png")
	got, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}},
		nil, testObsTime, roi,
		RenderOptions{OutputPath: outPath})

	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got != outPath {
		t.Errorf("returned path %v, want %v", got, outPath)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("output size %v, want 100x100", img.Bounds())
	}

	// The extraction scratch file must not outlive the render
	if _, err := os.Stat(extracted); !os.IsNotExist(err) {
		t.Errorf("extraction scratch file left behind")
	}
}

func Test_RenderFrame_AllLayersFailed(t *testing.T) {
	r := makeTestRenderer(nil, nil)

	roi, _ := region.NewRegionOfInterest(-100, -100, 100, 100, 2.0)
	_, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}, {SourceID: 10, Opacity: 60}},
		nil, testObsTime, roi,
		RenderOptions{OutputPath: "/tmp/never.png"})

	if err == nil {
		t.Fatalf("expected fatal error with no buildable layers")
	}

	statusErr, ok := err.(errorwithstatus.StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if statusErr.LegacyCode() != 17 {
		t.Errorf("legacy code %v, want 17", statusErr.LegacyCode())
	}
}

func Test_RenderFrame_PartialLayerFailureTolerated(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 100, 100)

	// Frames exist only for source 8, source 10 fails its lookup
	r := makeTestRenderer([]framestore.Frame{testFrame(8)}, []string{extracted})

	roi, _ := region.NewRegionOfInterest(-100, -100, 100, 100, 2.0)
	outPath := path.Join(dir, "frame.png")
	_, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}, {SourceID: 10, Opacity: 60}},
		nil, testObsTime, roi,
		RenderOptions{OutputPath: outPath})

	if err != nil {
		t.Fatalf("one good layer should be enough: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func Test_RenderFrame_MovieSizePreset(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 1000, 1000)

	r := makeTestRenderer([]framestore.Frame{testFrame(8)}, []string{extracted})

	roi, _ := region.NewRegionOfInterest(-1000, -1000, 1000, 1000, 2.0)
	outPath := path.Join(dir, "frame.png")
	_, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}},
		nil, testObsTime, roi,
		RenderOptions{OutputPath: outPath, MovieSize: "720p"})

	if err != nil {
		t.Fatalf("%v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if img.Bounds().Dx() != 1280 || img.Bounds().Dy() != 720 {
		t.Errorf("preset output %v, want 1280x720", img.Bounds())
	}
}

func Test_MovieSizeDimensions(t *testing.T) {
	w, h, ok := MovieSizeDimensions("1080p")
	if !ok || w != 1920 || h != 1080 {
		t.Errorf("1080p resolved to %vx%v ok=%v", w, h, ok)
	}

	w, h, ok = MovieSizeDimensions("4K")
	if !ok || w != 3840 || h != 2160 {
		t.Errorf("4K should be case insensitive, got %vx%v ok=%v", w, h, ok)
	}

	if _, _, ok = MovieSizeDimensions(""); ok {
		t.Errorf("empty preset should mean no downscale")
	}
	if _, _, ok = MovieSizeDimensions("potato"); ok {
		t.Errorf("unknown preset should mean no downscale")
	}
}

func Test_SortBuiltLayers(t *testing.T) {
	built := []builtLayer{
		{layer: layers.Layer{SourceID: 4, Order: 2}},
		{layer: layers.Layer{SourceID: 8, Order: 1}},
		{layer: layers.Layer{SourceID: 5, Order: 2}},
		{layer: layers.Layer{SourceID: 10, Order: 1}},
	}

	sorted := sortBuiltLayers(built)

	got := []int{}
	for _, b := range sorted {
		got = append(got, b.layer.SourceID)
	}

	want := []int{8, 10, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("composite order %v, want %v", got, want)
		}
	}
}

// recordingSurface - captures draw calls so pipeline ordering can be checked
type recordingSurface struct {
	ops []string
	// Vertex count per DrawPolygon call, parallel to filtered op list
	polygonSizes []int
}

func (s *recordingSurface) CompositeImage(img image.Image, mode CompositeMode, x int, y int, opacity int) {
	s.ops = append(s.ops, "composite")
}
func (s *recordingSurface) DrawPolygon(points []image.Point, fill color.RGBA) {
	s.ops = append(s.ops, "polygon")
	s.polygonSizes = append(s.polygonSizes, len(points))
}
func (s *recordingSurface) AnnotateText(x int, y int, text string, size int, fill color.RGBA, stroke color.RGBA) {
	s.ops = append(s.ops, "text")
}
func (s *recordingSurface) Resize(width int, height int) {}
func (s *recordingSurface) Write(path string) error      { return nil }
func (s *recordingSurface) Bounds() image.Rectangle      { return image.Rect(0, 0, 100, 100) }

func Test_RenderFrame_EventTwoPassOrder(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 100, 100)

	r := makeTestRenderer([]framestore.Frame{testFrame(8)}, []string{extracted})
	r.Events = &eventprovider.MemEventProvider{
		Events: []events.Event{
			{
				ID:        "ivo://helio/1",
				EventType: "AR",
				FrmName:   "SPoCA",
				Concept:   "Active Region",
				StartTime: testObsTime,
				EndTime:   testObsTime.Add(time.Hour),
				HPCX:      50,
				HPCY:      -30,
				Polygon: []events.Point{
					{X: 40, Y: -40}, {X: 60, Y: -40}, {X: 65, Y: -25}, {X: 50, Y: -15}, {X: 38, Y: -28},
				},
			},
		},
		FRMs:     map[string][]string{"Active Region/AR": {"SPoCA"}},
		FRMOrder: []string{"Active Region/AR"},
	}

	recorder := &recordingSurface{}
	r.NewSurface = func(w int, h int, highQuality bool) DrawingSurface { return recorder }

	roi, _ := region.NewRegionOfInterest(-100, -100, 100, 100, 2.0)
	tree := events.NewSelectionTreeFromLegacyString("[AR,SPoCA,1]")

	_, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}},
		tree, testObsTime, roi,
		RenderOptions{OutputPath: path.Join(dir, "frame.png")})

	if err != nil {
		t.Fatalf("%v", err)
	}

	// The boundary polygon (5 vertices) must draw before the marker diamond
	// (4 vertices), and the label text after both
	polyIdx, markerIdx, textIdx := -1, -1, -1
	polyCall := 0
	for i, op := range recorder.ops {
		switch op {
		case "polygon":
			if recorder.polygonSizes[polyCall] == 5 && polyIdx < 0 {
				polyIdx = i
			}
			if recorder.polygonSizes[polyCall] == 4 && markerIdx < 0 {
				markerIdx = i
			}
			polyCall++
		case "text":
			if textIdx < 0 {
				textIdx = i
			}
		}
	}

	if polyIdx < 0 {
		t.Fatalf("boundary polygon never drawn, ops: %v", recorder.ops)
	}
	if markerIdx < 0 {
		t.Fatalf("marker never drawn, ops: %v", recorder.ops)
	}
	if textIdx < 0 {
		t.Fatalf("label never drawn, ops: %v", recorder.ops)
	}
	if polyIdx > markerIdx {
		t.Errorf("polygon pass must run before marker pass (poly at %v, marker at %v)", polyIdx, markerIdx)
	}
	if markerIdx > textIdx {
		t.Errorf("label should draw with its marker, after the diamond")
	}
	if recorder.ops[0] != "composite" {
		t.Errorf("imagery must composite before annotations, ops: %v", recorder.ops)
	}
}

func Test_RenderFrame_MissingMaskTolerated(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 100, 100)

	r := makeTestRenderer([]framestore.Frame{testFrame(8)}, []string{extracted})
	r.Events = &eventprovider.MemEventProvider{
		Events: []events.Event{
			{
				ID:         "ivo://helio/2",
				EventType:  "CH",
				FrmName:    "SPoCA",
				Concept:    "Coronal Hole",
				StartTime:  testObsTime,
				EndTime:    testObsTime.Add(time.Hour),
				HPCX:       10,
				HPCY:       10,
				PolygonURL: "masks/ch/absent.png",
			},
		},
		FRMs:     map[string][]string{"Coronal Hole/CH": {"SPoCA"}},
		FRMOrder: []string{"Coronal Hole/CH"},
	}

	recorder := &recordingSurface{}
	r.NewSurface = func(w int, h int, highQuality bool) DrawingSurface { return recorder }

	roi, _ := region.NewRegionOfInterest(-100, -100, 100, 100, 2.0)
	tree := events.NewSelectionTreeFromLegacyString("[CH,SPoCA,1]")

	_, err := r.RenderFrame(
		[]layers.Layer{{SourceID: 8, Opacity: 100}},
		tree, testObsTime, roi,
		RenderOptions{OutputPath: path.Join(dir, "frame.png")})

	if err != nil {
		t.Fatalf("missing mask must not fail the frame: %v", err)
	}

	// The marker still draws even though its polygon mask was absent
	markerDrawn := false
	for _, n := range recorder.polygonSizes {
		if n == 4 {
			markerDrawn = true
		}
	}
	if !markerDrawn {
		t.Errorf("marker not drawn after mask skip, ops: %v", recorder.ops)
	}
}
