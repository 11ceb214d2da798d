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

package frameselect

import (
	"strings"
	"testing"
	"time"

	"github.com/solarview/core/core/errorwithstatus"
)

func makeTimestamps(start time.Time, count int, stepSec int) []time.Time {
	result := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, start.Add(time.Duration(i*stepSec)*time.Second))
	}
	return result
}

func Test_AllocateFrameBudget_SparseLayerNotStarved(t *testing.T) {
	alloc := AllocateFrameBudget([]LayerAvailability{
		{SourceID: 8, FrameCount: 100},
		{SourceID: 10, FrameCount: 3},
	}, 10)

	if alloc[10] != 3 {
		t.Errorf("Sparse layer should get min(3, 10/2)=3, got %v", alloc[10])
	}
	if alloc[8] != 7 {
		t.Errorf("Dense layer should get the remaining 7, got %v", alloc[8])
	}

	total := alloc[8] + alloc[10]
	if total > 10 {
		t.Errorf("Allocation exceeded budget: %v", total)
	}
}

func Test_AllocateFrameBudget_EvenSplit(t *testing.T) {
	alloc := AllocateFrameBudget([]LayerAvailability{
		{SourceID: 1, FrameCount: 50},
		{SourceID: 2, FrameCount: 50},
		{SourceID: 3, FrameCount: 50},
	}, 30)

	for id, n := range alloc {
		if n != 10 {
			t.Errorf("Source %v should get 10 frames, got %v", id, n)
		}
	}
}

func Test_SelectFrames_SubSampling(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	avail := makeTimestamps(start, 100, 60)

	sel, err := SelectFrames(avail, Request{
		Start:     start,
		End:       start.Add(100 * time.Minute),
		MaxFrames: 10,
	}, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sel.Timestamps) != 10 {
		t.Fatalf("Expected 10 frames, got %v", len(sel.Timestamps))
	}

	// index = round(i*100/10) -> 0,10,20...90, strictly increasing
	for i, ts := range sel.Timestamps {
		want := avail[i*10]
		if !ts.Equal(want) {
			t.Errorf("Frame %v: expected %v, got %v", i, want, ts)
		}
		if i > 0 && !sel.Timestamps[i-1].Before(ts) {
			t.Errorf("Timestamps not strictly increasing at %v", i)
		}
	}
}

func Test_SelectFrames_ExplicitCadence(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	avail := makeTimestamps(start, 5, 720) // 12 min cadence

	sel, err := SelectFrames(avail, Request{
		Start:      start,
		End:        end,
		CadenceSec: 720,
		MaxFrames:  5,
	}, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sel.Timestamps) != 5 {
		t.Errorf("Expected all 5 frames, got %v", len(sel.Timestamps))
	}
	if sel.Advisory != "" {
		t.Errorf("Expected no advisory, got %v", sel.Advisory)
	}
}

func Test_SelectFrames_CadenceClamped(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)
	avail := makeTimestamps(start, 3600, 1)

	// 1s cadence over an hour wants 3600 frames, cap is 10
	sel, err := SelectFrames(avail, Request{
		Start:      start,
		End:        end,
		CadenceSec: 1,
		MaxFrames:  10,
	}, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sel.Timestamps) != 10 {
		t.Errorf("Expected clamp to 10 frames, got %v", len(sel.Timestamps))
	}
	if sel.CadenceSec != 360 {
		t.Errorf("Expected recomputed cadence 360, got %v", sel.CadenceSec)
	}
	if !strings.Contains(sel.Advisory, "cadence changed") {
		t.Errorf("Expected cadence-changed advisory, got %v", sel.Advisory)
	}
}

func Test_SelectFrames_AutoTruncation(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	avail := makeTimestamps(start, 100, 60)

	sel, err := SelectFrames(avail, Request{
		Start:     start,
		End:       start.Add(100 * time.Minute),
		MaxFrames: 20,
	}, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sel.Timestamps) != 20 {
		t.Errorf("Expected 20 frames, got %v", len(sel.Timestamps))
	}
	if !strings.Contains(sel.Advisory, "truncated") {
		t.Errorf("Expected truncation advisory, got %v", sel.Advisory)
	}
	// The advisory must name the effective end timestamp
	effectiveEnd := sel.Timestamps[len(sel.Timestamps)-1].UTC().Format("2006-01-02 15:04:05")
	if !strings.Contains(sel.Advisory, effectiveEnd) {
		t.Errorf("Advisory should name effective end %v, got %v", effectiveEnd, sel.Advisory)
	}
}

func Test_SelectFrames_NoFrames(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := SelectFrames([]time.Time{}, Request{
		Start:     start,
		End:       start.Add(time.Hour),
		MaxFrames: 10,
	}, 8)

	if err == nil {
		t.Fatalf("Expected no-frames error")
	}
	statusErr, ok := err.(errorwithstatus.StatusError)
	if !ok || statusErr.LegacyCode() != errorwithstatus.CodeNoFramesAvailable {
		t.Errorf("Expected NoFramesAvailable code, got %v", err)
	}
}
