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

package events

import (
	"testing"
)

func Test_LegacyString_RoundTrip(t *testing.T) {
	tree := NewSelectionTreeFromLegacyString("[AR,SPoCA,1]")

	if !tree.AppliesFrm("AR", "SPoCA") {
		t.Errorf("Expected SPoCA to be selected under AR")
	}
	if tree.AppliesFrm("AR", "SomethingElse") {
		t.Errorf("SomethingElse should not be selected")
	}
	if tree.HasEventsForType("CH") {
		t.Errorf("CH was never mentioned, should have no selection")
	}
	if !tree.IsLabelVisible("AR") {
		t.Errorf("Visibility flag 1 should make AR labels visible")
	}
}

func Test_LegacyString_MultipleGroups(t *testing.T) {
	tree := NewSelectionTreeFromLegacyString("[AR,SPoCA;NOAA_SWPC_Observer,1],[FL,SWPC,0]")

	if !tree.AppliesFrm("AR", "SPoCA") || !tree.AppliesFrm("AR", "NOAA_SWPC_Observer") {
		t.Errorf("Both AR FRMs should be selected")
	}
	if !tree.AppliesFrm("FL", "SWPC") {
		t.Errorf("FL SWPC should be selected")
	}
	if tree.IsLabelVisible("FL") {
		t.Errorf("FL labels should be hidden")
	}
}

func Test_LegacyString_MalformedGroupSkipped(t *testing.T) {
	// Missing visibility field - group is skipped silently
	tree := NewSelectionTreeFromLegacyString("[AR,SPoCA]")

	if tree.HasEventsForType("AR") {
		t.Errorf("Malformed group should be skipped")
	}
}

func Test_LegacyString_Empty(t *testing.T) {
	tree := NewSelectionTreeFromLegacyString("")
	if tree.HasEventsForType("AR") {
		t.Errorf("Empty string should give an empty tree")
	}
}

func Test_SpaceUnderscoreNormalization(t *testing.T) {
	tree := NewSelectionTreeFromStructured([]SelectedEventsInput{
		{
			EventType:      "AR",
			MarkersVisible: true,
			Frms:           []SelectedFrmInput{{Name: "NOAA SWPC Observer"}},
		},
	})

	if !tree.AppliesFrm("AR", "NOAA SWPC Observer") {
		t.Errorf("Space form should be selected")
	}
	if !tree.AppliesFrm("AR", "NOAA_SWPC_Observer") {
		t.Errorf("Underscore form should be equivalent")
	}
}

func Test_StructuredTree_MarkersHiddenSkipsCategory(t *testing.T) {
	tree := NewSelectionTreeFromStructured([]SelectedEventsInput{
		{
			EventType:      "CH",
			MarkersVisible: false,
			Frms:           []SelectedFrmInput{{Name: "SPoCA"}},
		},
	})

	if tree.HasEventsForType("CH") {
		t.Errorf("Hidden markers should skip the whole category")
	}
}

// The "all" sentinel collapses the category, discarding finer-grained
// entries in the same input. Collapse-wins is load-bearing for saved states.
func Test_StructuredTree_AllSentinelCollapses(t *testing.T) {
	tree := NewSelectionTreeFromStructured([]SelectedEventsInput{
		{
			EventType:      "FL",
			MarkersVisible: true,
			Frms: []SelectedFrmInput{
				{Name: "SWPC", EventInstances: []string{MakeEventInstanceID("FL", "SWPC", "ivo://helio/1")}},
				{Name: "all"},
			},
		},
	})

	if !tree.AppliesAllForType("FL") {
		t.Errorf("'all' entry should collapse the category")
	}
	if !tree.AppliesFrm("FL", "AnyMethodAtAll") {
		t.Errorf("Collapsed category selects every FRM")
	}
}

func Test_AppliesEventInstance(t *testing.T) {
	id := "ivo://helio/AR_2021.run+1 (v2)"
	canonical := MakeEventInstanceID("AR", "SPoCA", id)

	tree := NewSelectionTreeFromStructured([]SelectedEventsInput{
		{
			EventType:      "AR",
			MarkersVisible: true,
			Frms:           []SelectedFrmInput{{Name: "SPoCA", EventInstances: []string{canonical}}},
		},
	})

	selected := &Event{ID: id}
	other := &Event{ID: "ivo://helio/other"}

	if !tree.AppliesEventInstance("AR", "SPoCA", selected) {
		t.Errorf("Canonical id should match")
	}
	if tree.AppliesEventInstance("AR", "SPoCA", other) {
		t.Errorf("Different event should not match")
	}
	if tree.AppliesAllInstancesForFrm("AR", "SPoCA") {
		t.Errorf("Specific instance selection is not all-instances")
	}
}

func Test_Queries_TotalOnMissingKeys(t *testing.T) {
	tree := NewSelectionTreeFromLegacyString("[AR,SPoCA,1]")

	// None of these may panic, all return false
	if tree.AppliesAllForType("XX") ||
		tree.AppliesFrm("XX", "Anything") ||
		tree.AppliesAllInstancesForFrm("XX", "Anything") ||
		tree.AppliesEventInstance("XX", "Anything", &Event{ID: "e"}) ||
		tree.IsLabelVisible("XX") {
		t.Errorf("Queries on missing keys must return false")
	}
}

func Test_SelectEvents(t *testing.T) {
	categories := []EventCategory{
		{
			Name: "Active Region",
			Pin:  "AR",
			Frms: []EventTypeGroup{
				{Name: "SPoCA", Events: []Event{{ID: "a1", EventType: "AR", FrmName: "SPoCA"}}},
				{Name: "HMI SHARP", Events: []Event{{ID: "a2", EventType: "AR", FrmName: "HMI SHARP"}}},
			},
		},
		{
			Name: "Flare",
			Pin:  "FL",
			Frms: []EventTypeGroup{
				{Name: "SWPC", Events: []Event{{ID: "f1", EventType: "FL", FrmName: "SWPC"}}},
			},
		},
	}

	tree := NewSelectionTreeFromLegacyString("[AR,SPoCA,1]")
	selected := SelectEvents(categories, tree)

	if len(selected) != 1 {
		t.Fatalf("Expected 1 selected event, got %v", len(selected))
	}
	if selected[0].ID != "a1" {
		t.Errorf("Expected a1, got %v", selected[0].ID)
	}
	if !selected[0].LabelVisible {
		t.Errorf("Label visibility flag should be stamped on")
	}
}
