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

package region

import (
	"testing"

	"github.com/solarview/core/core/errorwithstatus"
)

func Test_NewRegionOfInterest_Valid(t *testing.T) {
	roi, err := NewRegionOfInterest(-1000, -1000, 1000, 1000, 2.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if roi.PixelWidth() != 1000 || roi.PixelHeight() != 1000 {
		t.Errorf("Expected 1000x1000 px, got %vx%v", roi.PixelWidth(), roi.PixelHeight())
	}
	if roi.PixelWidth() <= 0 || roi.PixelHeight() <= 0 {
		t.Errorf("Pixel dimensions must be positive")
	}
}

func Test_NewRegionOfInterest_Invalid(t *testing.T) {
	cases := []struct {
		name                            string
		left, top, right, bottom, scale float64
	}{
		{"right <= left", 100, -100, 100, 100, 1.0},
		{"right < left", 100, -100, 50, 100, 1.0},
		{"bottom <= top", -100, 100, 100, 100, 1.0},
		{"zero scale", -100, -100, 100, 100, 0},
	}

	for _, c := range cases {
		_, err := NewRegionOfInterest(c.left, c.top, c.right, c.bottom, c.scale)
		if err == nil {
			t.Errorf("%v: expected error", c.name)
			continue
		}
		statusErr, ok := err.(errorwithstatus.StatusError)
		if !ok || statusErr.LegacyCode() != errorwithstatus.CodeInvalidRegion {
			t.Errorf("%v: expected invalid region code, got %v", c.name, err)
		}
	}
}

func Test_ClampToMaxPixels(t *testing.T) {
	roi, err := NewRegionOfInterest(-2000, -1000, 2000, 1000, 0.5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 8000x4000 px, clamp to 4096
	roi.ClampToMaxPixels(4096)

	if roi.PixelWidth() > 4096 || roi.PixelHeight() > 4096 {
		t.Errorf("Clamp failed: %vx%v", roi.PixelWidth(), roi.PixelHeight())
	}

	// The rectangle itself must be untouched
	if roi.Left != -2000 || roi.Right != 2000 || roi.Top != -1000 || roi.Bottom != 1000 {
		t.Errorf("Clamp modified the rectangle: %+v", roi)
	}
}

func Test_PixelPos(t *testing.T) {
	roi, _ := NewRegionOfInterest(-1000, -1000, 1000, 1000, 2.0)

	x, y := roi.PixelPos(0, 0)
	if x != 500 || y != 500 {
		t.Errorf("Centre should map to (500,500), got (%v,%v)", x, y)
	}

	x, y = roi.PixelPos(-1000, -1000)
	if x != 0 || y != 0 {
		t.Errorf("Corner should map to (0,0), got (%v,%v)", x, y)
	}
}
