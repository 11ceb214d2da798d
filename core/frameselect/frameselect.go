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

// Frame selection for movie builds: decides which timestamps get rendered,
// respecting a global frame cap and the relative availability of each image
// source in the requested range.
package frameselect

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/solarview/core/core/errorwithstatus"
)

// LayerAvailability - how many frames one image source has within the
// requested range
type LayerAvailability struct {
	SourceID   int
	FrameCount int
}

// Request - what the caller asked for. CadenceSec <= 0 means "auto", ie use
// every available frame up to the cap.
type Request struct {
	Start      time.Time
	End        time.Time
	CadenceSec int
	MaxFrames  int
}

// Selection - the outcome: the timestamps to render, the effective cadence,
// and a non-fatal advisory for the user when the request had to be adjusted
type Selection struct {
	Timestamps []time.Time
	CadenceSec int
	Advisory   string
}

// AllocateFrameBudget - divides a global frame budget across layers so one
// sparse layer can't starve the rest. Layers are processed in ascending order
// of availability; each gets min(available, remainingBudget/remainingLayers).
// Returns sourceId -> allocated frame count.
func AllocateFrameBudget(availability []LayerAvailability, maxFrames int) map[int]int {
	sorted := make([]LayerAvailability, len(availability))
	copy(sorted, availability)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FrameCount == sorted[j].FrameCount {
			return sorted[i].SourceID < sorted[j].SourceID
		}
		return sorted[i].FrameCount < sorted[j].FrameCount
	})

	result := map[int]int{}
	remaining := maxFrames

	for i, layer := range sorted {
		layersLeft := len(sorted) - i
		share := int(math.Floor(float64(remaining) / float64(layersLeft)))

		alloc := layer.FrameCount
		if alloc > share {
			alloc = share
		}

		result[layer.SourceID] = alloc
		remaining -= alloc
	}

	return result
}

// SelectFrames - picks the timestamps to render from the reference layer's
// available frames (which must be sorted ascending). Fails with a
// NoFramesAvailable error when nothing can be rendered.
func SelectFrames(refTimestamps []time.Time, req Request, refSourceId int) (Selection, error) {
	sel := Selection{CadenceSec: req.CadenceSec}

	rangeSec := req.End.Sub(req.Start).Seconds()

	var numFrames int
	if req.CadenceSec > 0 {
		numFrames = int(math.Ceil(rangeSec / float64(req.CadenceSec)))

		if numFrames > req.MaxFrames {
			sel.CadenceSec = int(math.Floor(rangeSec / float64(req.MaxFrames)))
			numFrames = req.MaxFrames
			sel.Advisory = fmt.Sprintf("Movie cadence changed to %v seconds per frame to fit %v frames", sel.CadenceSec, req.MaxFrames)
		}

		if numFrames > len(refTimestamps) {
			numFrames = len(refTimestamps)
		}
	} else {
		// "auto" - use every frame the reference layer has, capped
		numFrames = len(refTimestamps)

		if numFrames > req.MaxFrames {
			numFrames = req.MaxFrames
		}
	}

	if numFrames <= 0 {
		return sel, errorwithstatus.MakeNoFramesError(refSourceId, req.Start.Unix(), req.End.Unix())
	}

	sel.Timestamps = subSample(refTimestamps, numFrames)

	// Truncation advisory for auto mode, naming the effective end
	if req.CadenceSec <= 0 && numFrames < len(refTimestamps) {
		effectiveEnd := sel.Timestamps[len(sel.Timestamps)-1]
		sel.Advisory = fmt.Sprintf("Movie truncated to %v frames, ending at %v", numFrames, effectiveEnd.UTC().Format("2006-01-02 15:04:05"))
	}

	return sel, nil
}

// subSample - picks numFrames entries spread evenly across the full list:
// index = round(i * total / numFrames). Strictly increasing for
// numFrames <= len(available).
func subSample(available []time.Time, numFrames int) []time.Time {
	total := len(available)
	if numFrames >= total {
		result := make([]time.Time, total)
		copy(result, available)
		return result
	}

	result := make([]time.Time, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		idx := int(math.Round(float64(i) * float64(total) / float64(numFrames)))
		if idx >= total {
			idx = total - 1
		}
		result = append(result, available[idx])
	}
	return result
}
