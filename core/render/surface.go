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
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CompositeMode - how an image layer combines with what's already down
type CompositeMode int

const (
	// Straight alpha-blended overlay
	ModeNormal CompositeMode = iota
	// Per-pixel absolute difference against what's already down
	ModeDifference
)

// DrawingSurface - the minimal 2D canvas capability set the compositing
// pipeline needs. The concrete implementation is swappable, tests use the
// same RGBA one but never write it to disk.
type DrawingSurface interface {
	CompositeImage(img image.Image, mode CompositeMode, x int, y int, opacity int)
	DrawPolygon(points []image.Point, fill color.RGBA)
	AnnotateText(x int, y int, text string, size int, fill color.RGBA, stroke color.RGBA)
	Resize(width int, height int)
	Write(path string) error
	Bounds() image.Rectangle
}

// RGBASurface - DrawingSurface over an in-memory RGBA raster. Output format
// is chosen by the file extension at Write time; each format has a standard
// and a high quality tier.
type RGBASurface struct {
	img *image.RGBA

	// High quality: JPEG 95 instead of 80, PNG best compression
	HighQuality bool
}

func MakeRGBASurface(width int, height int) *RGBASurface {
	return &RGBASurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (s *RGBASurface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

func (s *RGBASurface) CompositeImage(img image.Image, mode CompositeMode, x int, y int, opacity int) {
	if opacity <= 0 {
		return
	}
	if opacity > 100 {
		opacity = 100
	}

	srcBounds := img.Bounds()

	for sy := srcBounds.Min.Y; sy < srcBounds.Max.Y; sy++ {
		for sx := srcBounds.Min.X; sx < srcBounds.Max.X; sx++ {
			dx := x + sx - srcBounds.Min.X
			dy := y + sy - srcBounds.Min.Y
			if !image.Pt(dx, dy).In(s.img.Bounds()) {
				continue
			}

			sr, sg, sb, sa := img.At(sx, sy).RGBA()
			dst := s.img.RGBAAt(dx, dy)

			if mode == ModeDifference {
				s.img.SetRGBA(dx, dy, color.RGBA{
					R: absDiff8(uint8(sr>>8), dst.R),
					G: absDiff8(uint8(sg>>8), dst.G),
					B: absDiff8(uint8(sb>>8), dst.B),
					A: 255,
				})
				continue
			}

			// Source alpha scaled by layer opacity
			alpha := uint32(sa>>8) * uint32(opacity) / 100
			if alpha == 0 {
				continue
			}

			s.img.SetRGBA(dx, dy, color.RGBA{
				R: blend8(uint8(sr>>8), dst.R, alpha),
				G: blend8(uint8(sg>>8), dst.G, alpha),
				B: blend8(uint8(sb>>8), dst.B, alpha),
				A: 255,
			})
		}
	}
}

func absDiff8(a uint8, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func blend8(src uint8, dst uint8, alpha uint32) uint8 {
	return uint8((uint32(src)*alpha + uint32(dst)*(255-alpha)) / 255)
}

// DrawPolygon - filled polygon via even-odd scanline fill
func (s *RGBASurface) DrawPolygon(points []image.Point, fill color.RGBA) {
	if len(points) < 3 {
		return
	}

	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	bounds := s.img.Bounds()
	if minY < bounds.Min.Y {
		minY = bounds.Min.Y
	}
	if maxY >= bounds.Max.Y {
		maxY = bounds.Max.Y - 1
	}

	for y := minY; y <= maxY; y++ {
		// Find x crossings of this scanline with every polygon edge
		crossings := []int{}
		for i := 0; i < len(points); i++ {
			a := points[i]
			b := points[(i+1)%len(points)]

			if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
				t := float64(y-a.Y) / float64(b.Y-a.Y)
				crossings = append(crossings, a.X+int(t*float64(b.X-a.X)))
			}
		}

		// Sort the few crossings we have (insertion sort is fine)
		for i := 1; i < len(crossings); i++ {
			for j := i; j > 0 && crossings[j] < crossings[j-1]; j-- {
				crossings[j], crossings[j-1] = crossings[j-1], crossings[j]
			}
		}

		// Fill between pairs
		for i := 0; i+1 < len(crossings); i += 2 {
			for x := crossings[i]; x <= crossings[i+1]; x++ {
				if image.Pt(x, y).In(bounds) {
					s.blendPixel(x, y, fill)
				}
			}
		}
	}
}

func (s *RGBASurface) blendPixel(x int, y int, c color.RGBA) {
	if c.A == 255 {
		s.img.SetRGBA(x, y, c)
		return
	}
	dst := s.img.RGBAAt(x, y)
	alpha := uint32(c.A)
	s.img.SetRGBA(x, y, color.RGBA{
		R: blend8(c.R, dst.R, alpha),
		G: blend8(c.G, dst.G, alpha),
		B: blend8(c.B, dst.B, alpha),
		A: 255,
	})
}

// AnnotateText - single line of text with a 1px stroke outline so labels stay
// readable over imagery. Size is accepted for interface compatibility but we
// render with the one embedded face; the legacy system's font sizes all map
// close enough to it at movie resolutions.
func (s *RGBASurface) AnnotateText(x int, y int, text string, size int, fill color.RGBA, stroke color.RGBA) {
	offsets := []image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, off := range offsets {
		s.drawString(x+off.X, y+off.Y, text, stroke)
	}
	s.drawString(x, y, text, fill)
}

func (s *RGBASurface) drawString(x int, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Resize - scales the raster to the given dimensions
func (s *RGBASurface) Resize(width int, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, s.img, s.img.Bounds(), xdraw.Over, nil)
	s.img = dst
}

// Write - encodes to the path, format chosen by extension
func (s *RGBASurface) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer f.Close()

	writer := bufio.NewWriter(f)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if s.HighQuality {
			encoder.CompressionLevel = png.BestCompression
		}
		err = encoder.Encode(writer, s.img)
	case ".jpg", ".jpeg":
		quality := 80
		if s.HighQuality {
			quality = 95
		}
		err = jpeg.Encode(writer, s.img, &jpeg.Options{Quality: quality})
	default:
		return errors.Errorf("unsupported output format: %v", path)
	}

	if err != nil {
		return errors.Wrap(err, "image encode failed")
	}

	return writer.Flush()
}
