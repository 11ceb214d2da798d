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

package layers

import (
	"testing"
	"time"
)

func Test_ParseLayerString(t *testing.T) {
	list, err := ParseLayerString("[8,1,100],[10,1,60]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("Expected 2 layers, got %v", len(list))
	}
	if list[0].SourceID != 8 || list[0].Opacity != 100 {
		t.Errorf("Bad first layer: %+v", list[0])
	}
	if list[1].SourceID != 10 || list[1].Opacity != 60 {
		t.Errorf("Bad second layer: %+v", list[1])
	}
}

func Test_ParseLayerString_HiddenDropped(t *testing.T) {
	list, err := ParseLayerString("[8,1,100],[10,0,60]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].SourceID != 8 {
		t.Errorf("Hidden layer should be dropped, got %+v", list)
	}
}

func Test_ParseLayerString_Malformed(t *testing.T) {
	bad := []string{
		"",
		"[8]",
		"[notanumber,1,100]",
		"[8,1,150]", // opacity out of range
		"[8,0,50]",  // all layers hidden
	}

	for _, raw := range bad {
		if _, err := ParseLayerString(raw); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

func Test_ParseLayerString_RunningDifference(t *testing.T) {
	list, err := ParseLayerString("[8,1,100,1,3600,]")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if list[0].DiffMode != DiffRunning {
		t.Errorf("Expected running difference mode")
	}

	obsTime := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	cmp := list[0].ComparisonTime(obsTime)
	if !cmp.Equal(obsTime.Add(-time.Hour)) {
		t.Errorf("Expected comparison 1h earlier, got %v", cmp)
	}
}

func Test_SortForCompositing(t *testing.T) {
	list := []Layer{
		{SourceID: 5, Order: 3},
		{SourceID: 8, Order: 1},
		{SourceID: 4, Order: 2},
		{SourceID: 10, Order: 1},
	}

	sorted := SortForCompositing(list)

	wantOrder := []int{8, 10, 4, 5}
	for i, want := range wantOrder {
		if sorted[i].SourceID != want {
			t.Errorf("Position %v: expected source %v, got %v", i, want, sorted[i].SourceID)
		}
	}
}

func Test_LookupFamily(t *testing.T) {
	if LookupFamily("SDO", "AIA", "AIA") != FamilyAIA {
		t.Errorf("SDO/AIA/AIA should be AIA family")
	}
	if LookupFamily("sdo", "aia", "aia") != FamilyAIA {
		t.Errorf("Lookup should be case-insensitive")
	}
	if LookupFamily("SOHO", "LASCO", "C2") != FamilyLASCO {
		t.Errorf("LASCO C2 should be LASCO family")
	}
	if LookupFamily("Unknown", "Thing", "Here") != FamilyGeneric {
		t.Errorf("Unknown tuples fall back to generic")
	}
}

func Test_FamilyCapabilities(t *testing.T) {
	caps := FamilyLASCO.Capabilities()
	if caps.AlphaMaskShape != "annulus" {
		t.Errorf("Coronagraphs use an annulus alpha mask")
	}
	if caps.LayerOrder <= 1 {
		t.Errorf("Coronagraph layers composite above disk layers")
	}

	if FamilyAIA.Capabilities().LayerOrder != 1 {
		t.Errorf("Disk imagery is order 1")
	}
}
