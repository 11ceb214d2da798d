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
	"encoding/base64"
	"strings"
)

// SelectionTree - the user's event-display configuration: which event types,
// detection methods and individual event instances are selected for
// rendering, and which types show labels. Immutable once built; all queries
// are total and return false for anything not present.

// instanceSelection - selection below one FRM: either every instance, or a
// specific id set
type instanceSelection struct {
	all bool
	ids map[string]bool
}

// categorySelection - selection below one event-type pin: either every FRM,
// or per-FRM instance selections keyed by normalised FRM name
type categorySelection struct {
	allFrms bool
	frms    map[string]instanceSelection
}

type SelectionTree struct {
	categories    map[string]categorySelection
	labelsVisible map[string]bool
}

func makeEmptySelectionTree() *SelectionTree {
	return &SelectionTree{
		categories:    map[string]categorySelection{},
		labelsVisible: map[string]bool{},
	}
}

// HasEventsForType - does this event-type pin have any selection at all
func (t *SelectionTree) HasEventsForType(pin string) bool {
	_, ok := t.categories[pin]
	return ok
}

// AppliesAllForType - true iff every FRM under the pin is selected
func (t *SelectionTree) AppliesAllForType(pin string) bool {
	cat, ok := t.categories[pin]
	return ok && cat.allFrms
}

// AppliesFrm - is a detection method selected under this pin. The FRM name is
// normalised before lookup, identically to how the tree was built.
func (t *SelectionTree) AppliesFrm(pin string, frmName string) bool {
	cat, ok := t.categories[pin]
	if !ok {
		return false
	}
	if cat.allFrms {
		return true
	}
	_, ok = cat.frms[NormalizeFrmName(frmName)]
	return ok
}

// AppliesAllInstancesForFrm - is every event instance under this FRM selected
func (t *SelectionTree) AppliesAllInstancesForFrm(pin string, frmName string) bool {
	cat, ok := t.categories[pin]
	if !ok {
		return false
	}
	if cat.allFrms {
		return true
	}
	frm, ok := cat.frms[NormalizeFrmName(frmName)]
	return ok && frm.all
}

// AppliesEventInstance - is this specific event selected, by canonical
// instance id membership
func (t *SelectionTree) AppliesEventInstance(pin string, frmName string, ev *Event) bool {
	cat, ok := t.categories[pin]
	if !ok {
		return false
	}
	if cat.allFrms {
		return true
	}
	frm, ok := cat.frms[NormalizeFrmName(frmName)]
	if !ok {
		return false
	}
	if frm.all {
		return true
	}
	return frm.ids[MakeEventInstanceID(pin, frmName, ev.ID)]
}

// IsLabelVisible - should events of this type render their labels
func (t *SelectionTree) IsLabelVisible(pin string) bool {
	return t.labelsVisible[pin]
}

// HideAllLabels - request-level override that switches every label off while
// keeping the event selection itself intact
func (t *SelectionTree) HideAllLabels() {
	t.labelsVisible = map[string]bool{}
}

// Characters in raw event ids that clash with the id syntax get escaped
// before base64 encoding. The exact substitutions are wire-compatible with
// saved client state, so they must not change.
var eventIDEscaper = strings.NewReplacer(
	" ", "_",
	"=", "_",
	"+", "\\+",
	".", "\\.",
	"(", "\\(",
	")", "\\)",
)

// MakeEventInstanceID - canonical id for one event instance:
// pin--frmName--base64(escape(event id))
func MakeEventInstanceID(pin string, frmName string, eventID string) string {
	escaped := eventIDEscaper.Replace(eventID)
	return pin + "--" + NormalizeFrmName(frmName) + "--" + base64.StdEncoding.EncodeToString([]byte(escaped))
}

// SelectedFrmInput / SelectedEventsInput - the structured selection shape
// clients POST with render requests
type SelectedFrmInput struct {
	Name           string   `json:"name"`
	EventInstances []string `json:"event_instances"`
}

type SelectedEventsInput struct {
	EventType      string             `json:"event_type"`
	MarkersVisible bool               `json:"markers_visible"`
	LabelsVisible  bool               `json:"labels_visible"`
	Frms           []SelectedFrmInput `json:"frms"`
}

// NewSelectionTreeFromStructured - one pass per category. Categories with
// markers hidden are skipped entirely. An FRM entry named "all" collapses the
// whole category to all-FRMs-selected, discarding any finer-grained entries
// in the same input; this collapse-wins behaviour matches saved client states
// and must be checked before any instance processing.
func NewSelectionTreeFromStructured(input []SelectedEventsInput) *SelectionTree {
	tree := makeEmptySelectionTree()

	for _, cat := range input {
		if !cat.MarkersVisible {
			continue
		}

		tree.labelsVisible[cat.EventType] = cat.LabelsVisible

		// "all" sentinel wins over everything else in this category
		collapsed := false
		for _, frm := range cat.Frms {
			if strings.EqualFold(frm.Name, "all") {
				tree.categories[cat.EventType] = categorySelection{allFrms: true}
				collapsed = true
				break
			}
		}
		if collapsed {
			continue
		}

		catSel := categorySelection{frms: map[string]instanceSelection{}}
		for _, frm := range cat.Frms {
			name := NormalizeFrmName(frm.Name)
			if len(frm.EventInstances) == 0 {
				catSel.frms[name] = instanceSelection{all: true}
				continue
			}

			ids := map[string]bool{}
			for _, id := range frm.EventInstances {
				ids[id] = true
			}
			catSel.frms[name] = instanceSelection{ids: ids}
		}

		if len(catSel.frms) > 0 {
			tree.categories[cat.EventType] = catSel
		}
	}

	return tree
}

// NewSelectionTreeFromLegacyString - parses the old delimited format
// "[type,frm1;frm2,visible],[type2,...]". The legacy format has no
// instance-level granularity: every listed FRM is fully selected. Malformed
// groups (fewer than 3 comma-separated parts) are skipped, not errored.
func NewSelectionTreeFromLegacyString(raw string) *SelectionTree {
	tree := makeEmptySelectionTree()

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if len(raw) == 0 {
		return tree
	}

	for _, group := range strings.Split(raw, "],[") {
		parts := strings.Split(group, ",")
		if len(parts) < 3 {
			continue
		}

		pin := strings.TrimSpace(parts[0])
		visible := parts[len(parts)-1] == "1" || strings.EqualFold(parts[len(parts)-1], "true")

		catSel, ok := tree.categories[pin]
		if !ok {
			catSel = categorySelection{frms: map[string]instanceSelection{}}
		}

		for _, frm := range strings.Split(parts[1], ";") {
			frm = strings.TrimSpace(frm)
			if len(frm) == 0 {
				continue
			}
			if strings.EqualFold(frm, "all") {
				catSel = categorySelection{allFrms: true}
				break
			}
			catSel.frms[NormalizeFrmName(frm)] = instanceSelection{all: true}
		}

		tree.categories[pin] = catSel
		tree.labelsVisible[pin] = visible
	}

	return tree
}

// SelectEvents - pure filter: returns the events from the category tree that
// the selection tree picks, with label visibility stamped on. The original
// accumulated into a shared list through nested conditionals; this replaces
// that with three composed predicate checks and a fresh result slice.
func SelectEvents(categories []EventCategory, tree *SelectionTree) []Event {
	result := []Event{}
	if tree == nil {
		return result
	}

	for _, cat := range categories {
		if !tree.HasEventsForType(cat.Pin) {
			continue
		}

		labelVisible := tree.IsLabelVisible(cat.Pin)

		for _, frm := range cat.Frms {
			if !tree.AppliesFrm(cat.Pin, frm.Name) {
				continue
			}

			for _, ev := range frm.Events {
				if !tree.AppliesAllInstancesForFrm(cat.Pin, frm.Name) &&
					!tree.AppliesEventInstance(cat.Pin, frm.Name, &ev) {
					continue
				}

				ev.LabelVisible = labelVisible
				result = append(result, ev)
			}
		}
	}

	return result
}
