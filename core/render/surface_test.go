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
)

func solidImage(w int, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func Test_CompositeImage_Opacity(t *testing.T) {
	s := MakeRGBASurface(4, 4)

	s.CompositeImage(solidImage(4, 4, color.RGBA{200, 100, 50, 255}), ModeNormal, 0, 0, 100)

	got := s.img.RGBAAt(1, 1)
	if got.R != 200 || got.G != 100 || got.B != 50 {
		t.Errorf("full opacity composite got %v", got)
	}

	// 50% over the existing colour should land halfway
	s.CompositeImage(solidImage(4, 4, color.RGBA{0, 0, 0, 255}), ModeNormal, 0, 0, 50)

	got = s.img.RGBAAt(1, 1)
	if got.R < 95 || got.R > 105 {
		t.Errorf("half opacity composite expected R near 100, got %v", got.R)
	}
}

func Test_CompositeImage_Difference(t *testing.T) {
	s := MakeRGBASurface(2, 2)
	s.CompositeImage(solidImage(2, 2, color.RGBA{200, 200, 200, 255}), ModeNormal, 0, 0, 100)
	s.CompositeImage(solidImage(2, 2, color.RGBA{50, 250, 200, 255}), ModeDifference, 0, 0, 100)

	got := s.img.RGBAAt(0, 0)
	if got.R != 150 || got.G != 50 || got.B != 0 {
		t.Errorf("difference composite got %v, want {150 50 0}", got)
	}
}

func Test_CompositeImage_OffsetAndClipping(t *testing.T) {
	s := MakeRGBASurface(4, 4)

	// Partially off the right edge, partially drawn, no panic
	s.CompositeImage(solidImage(3, 3, color.RGBA{255, 0, 0, 255}), ModeNormal, 2, 2, 100)

	if got := s.img.RGBAAt(3, 3); got.R != 255 {
		t.Errorf("expected offset composite at (3,3), got %v", got)
	}
	if got := s.img.RGBAAt(1, 1); got.R != 0 {
		t.Errorf("expected (1,1) untouched, got %v", got)
	}
}

func Test_DrawPolygon_FillsInterior(t *testing.T) {
	s := MakeRGBASurface(20, 20)

	s.DrawPolygon([]image.Point{{5, 5}, {15, 5}, {15, 15}, {5, 15}}, color.RGBA{0, 255, 0, 255})

	if got := s.img.RGBAAt(10, 10); got.G != 255 {
		t.Errorf("interior not filled, got %v", got)
	}
	if got := s.img.RGBAAt(2, 2); got.G != 0 {
		t.Errorf("exterior filled, got %v", got)
	}
	if got := s.img.RGBAAt(18, 10); got.G != 0 {
		t.Errorf("right of polygon filled, got %v", got)
	}
}

func Test_DrawPolygon_DegenerateIgnored(t *testing.T) {
	s := MakeRGBASurface(10, 10)
	s.DrawPolygon([]image.Point{{1, 1}, {5, 5}}, color.RGBA{255, 255, 255, 255})

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if s.img.RGBAAt(x, y).R != 0 {
				t.Fatalf("two-point polygon drew at (%v,%v)", x, y)
			}
		}
	}
}

func Test_AnnotateText_Draws(t *testing.T) {
	s := MakeRGBASurface(100, 30)
	s.AnnotateText(5, 20, "AR 13664", 10, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255})

	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 100; x++ {
			if s.img.RGBAAt(x, y).R == 255 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Errorf("text drew no fill pixels")
	}
}

func Test_Resize(t *testing.T) {
	s := MakeRGBASurface(100, 50)
	s.CompositeImage(solidImage(100, 50, color.RGBA{10, 20, 30, 255}), ModeNormal, 0, 0, 100)

	s.Resize(50, 25)

	bounds := s.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 25 {
		t.Errorf("resize got %vx%v", bounds.Dx(), bounds.Dy())
	}
	if got := s.img.RGBAAt(25, 12); got.B != 30 {
		t.Errorf("resize lost content, got %v", got)
	}
}

func Test_Write_FormatByExtension(t *testing.T) {
	dir := t.TempDir()
	s := MakeRGBASurface(8, 8)

	pngPath := path.Join(dir, "out.png")
	if err := s.Write(pngPath); err != nil {
		t.Errorf("png write failed: %v", err)
	}

	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("written png not decodable: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("decoded wrong size: %v", img.Bounds())
	}

	if err := s.Write(path.Join(dir, "out.jpg")); err != nil {
		t.Errorf("jpg write failed: %v", err)
	}

	if err := s.Write(path.Join(dir, "out.bmp")); err == nil {
		t.Errorf("expected unsupported format error for bmp")
	}
}
