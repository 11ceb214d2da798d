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

// Region of interest: the rectangular area of sky (in arcseconds) rendered
// into the output image, plus the image scale relating it to pixels.
package region

import (
	"fmt"
	"math"

	"github.com/solarview/core/core/errorwithstatus"
)

// RegionOfInterest - rectangle in helioprojective arcseconds plus an image
// scale in arcsec/pixel. Width and height must be strictly positive.
type RegionOfInterest struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64

	// Arcseconds per pixel
	Scale float64
}

func NewRegionOfInterest(left float64, top float64, right float64, bottom float64, scale float64) (RegionOfInterest, error) {
	roi := RegionOfInterest{Left: left, Top: top, Right: right, Bottom: bottom, Scale: scale}

	if right <= left {
		return roi, errorwithstatus.MakeInvalidRegionError(fmt.Sprintf("width must be positive, got left=%v right=%v", left, right))
	}
	if bottom <= top {
		return roi, errorwithstatus.MakeInvalidRegionError(fmt.Sprintf("height must be positive, got top=%v bottom=%v", top, bottom))
	}
	if scale <= 0 {
		return roi, errorwithstatus.MakeInvalidRegionError(fmt.Sprintf("scale must be positive, got %v", scale))
	}

	return roi, nil
}

// ArcsecWidth - width in arcseconds
func (roi *RegionOfInterest) ArcsecWidth() float64 {
	return roi.Right - roi.Left
}

// ArcsecHeight - height in arcseconds
func (roi *RegionOfInterest) ArcsecHeight() float64 {
	return roi.Bottom - roi.Top
}

// PixelWidth - width of the output raster in pixels
func (roi *RegionOfInterest) PixelWidth() int {
	return int(math.Round(roi.ArcsecWidth() / roi.Scale))
}

// PixelHeight - height of the output raster in pixels
func (roi *RegionOfInterest) PixelHeight() int {
	return int(math.Round(roi.ArcsecHeight() / roi.Scale))
}

// ClampToMaxPixels - if either pixel dimension exceeds maxPixels, coarsens
// the scale until both fit. The arcsecond rectangle is never changed, only
// the scale.
func (roi *RegionOfInterest) ClampToMaxPixels(maxPixels int) {
	if maxPixels <= 0 {
		return
	}

	if roi.PixelWidth() > maxPixels || roi.PixelHeight() > maxPixels {
		larger := math.Max(roi.ArcsecWidth(), roi.ArcsecHeight())
		roi.Scale = larger / float64(maxPixels)
	}
}

// PixelPos - converts a helioprojective coordinate to a pixel position within
// this region's raster
func (roi *RegionOfInterest) PixelPos(xArcsec float64, yArcsec float64) (int, int) {
	px := (xArcsec - roi.Left) / roi.Scale
	py := (yArcsec - roi.Top) / roi.Scale
	return int(math.Round(px)), int(math.Round(py))
}

// Contains - is an arcsecond coordinate within the region
func (roi *RegionOfInterest) Contains(xArcsec float64, yArcsec float64) bool {
	return xArcsec >= roi.Left && xArcsec <= roi.Right && yArcsec >= roi.Top && yArcsec <= roi.Bottom
}
