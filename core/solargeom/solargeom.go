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

// Time and geometry dependent coordinate corrections for solar feature
// positions: Sun-Earth distance normalisation, differential rotation of
// helioprojective coordinates across time, and helioprojective/heliographic
// conversions.
package solargeom

import (
	"math"
	"time"
)

// RSunReferenceArcsec - apparent solar radius in arcseconds at the 1 AU
// reference distance. Empirical constant carried over from the legacy system,
// do not re-derive: event placement depends on this exact value.
const RSunReferenceArcsec = 961.07064

// MinCutoutArcsec - minimum width/height of an event polygon cutout
const MinCutoutArcsec = 240.0

// Differential rotation rate coefficients (Howard, Harvey & Forgach),
// degrees/day sidereal: omega = A + B*sin^2(lat) + C*sin^4(lat)
const (
	rotCoeffA = 14.713
	rotCoeffB = -2.396
	rotCoeffC = -1.787

	// Earth's mean orbital motion, subtracted to get the synodic rate an
	// Earth-based observer sees
	earthMeanMotionDegPerDay = 0.9856
)

const degToRad = math.Pi / 180.0

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// SunEarthDistanceAU - Sun-Earth distance in AU at a given time, from the
// low-precision Earth ephemeris series. Deterministic pure function of time.
func SunEarthDistanceAU(t time.Time) float64 {
	days := t.Sub(j2000).Seconds() / 86400.0

	// Mean anomaly of the Sun
	g := (357.528 + 0.9856003*days) * degToRad

	return 1.00014 - 0.01671*math.Cos(g) - 0.00014*math.Cos(2.0*g)
}

// SunEarthDistanceScalar - multiplicative scalar that normalises arcsecond
// coordinates observed at time t to the 1 AU reference, so they compare
// against RSunReferenceArcsec
func SunEarthDistanceScalar(t time.Time) float64 {
	return SunEarthDistanceAU(t)
}

// RotationRateDegPerDay - latitude-dependent synodic rotation rate. The same
// model is used for event markers and viewport-follow offsets, so a frame and
// its annotations drift identically.
func RotationRateDegPerDay(latRad float64) float64 {
	sin2 := math.Sin(latRad) * math.Sin(latRad)
	sidereal := rotCoeffA + rotCoeffB*sin2 + rotCoeffC*sin2*sin2
	return sidereal - earthMeanMotionDegPerDay
}

// DifferentialRotate - moves a helioprojective coordinate (arcsec, as
// observed at "from") to where the underlying surface feature appears at
// "to". Coordinates at or beyond the reference solar radius (after AU
// scaling) are treated as off-disk: they get the AU rescale but no rotation,
// since near-limb and off-disk features don't visibly rotate over the spans
// we render.
//
// A feature that rotates past the limb (far side) comes back as (NaN, NaN);
// callers must drop such events rather than render them.
func DifferentialRotate(x float64, y float64, from time.Time, to time.Time) (float64, float64) {
	d1 := SunEarthDistanceAU(from)
	d2 := SunEarthDistanceAU(to)

	// Normalise to the 1 AU reference disk
	xr := x * d1
	yr := y * d1

	radius := math.Hypot(xr, yr)
	if radius >= RSunReferenceArcsec {
		return xr / d2, yr / d2
	}

	lat := math.Asin(yr / RSunReferenceArcsec)
	z := math.Sqrt(RSunReferenceArcsec*RSunReferenceArcsec - xr*xr - yr*yr)
	lon := math.Atan2(xr, z)

	days := to.Sub(from).Seconds() / 86400.0
	lonRotated := lon + RotationRateDegPerDay(lat)*days*degToRad

	if lonRotated <= -math.Pi/2 || lonRotated >= math.Pi/2 {
		return math.NaN(), math.NaN()
	}

	xRotated := RSunReferenceArcsec * math.Cos(lat) * math.Sin(lonRotated)
	return xRotated / d2, yr / d2
}

// RotationOffset - how far a point drifts between two times, in target-time
// arcseconds. Used for the per-frame viewport-follow correction.
func RotationOffset(x float64, y float64, from time.Time, to time.Time) (float64, float64) {
	xNew, yNew := DifferentialRotate(x, y, from, to)
	if math.IsNaN(xNew) || math.IsNaN(yNew) {
		return 0, 0
	}
	return xNew - x, yNew - y
}

// HPCToHeliographic - helioprojective arcsec (at observation time t) to
// heliographic latitude/longitude in degrees, longitude relative to the
// central meridian. Returns ok=false for points off the visible disk.
func HPCToHeliographic(x float64, y float64, t time.Time) (float64, float64, bool) {
	d := SunEarthDistanceAU(t)
	xr := x * d
	yr := y * d

	if math.Hypot(xr, yr) >= RSunReferenceArcsec {
		return 0, 0, false
	}

	lat := math.Asin(yr / RSunReferenceArcsec)
	z := math.Sqrt(RSunReferenceArcsec*RSunReferenceArcsec - xr*xr - yr*yr)
	lon := math.Atan2(xr, z)

	return lat / degToRad, lon / degToRad, true
}

// HeliographicToHPC - heliographic degrees back to helioprojective arcsec as
// seen at observation time t
func HeliographicToHPC(latDeg float64, lonDeg float64, t time.Time) (float64, float64) {
	d := SunEarthDistanceAU(t)
	lat := latDeg * degToRad
	lon := lonDeg * degToRad

	xr := RSunReferenceArcsec * math.Cos(lat) * math.Sin(lon)
	yr := RSunReferenceArcsec * math.Sin(lat)

	return xr / d, yr / d
}
