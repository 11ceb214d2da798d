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
	"strings"
	"time"
)

// NormalizeFRMs - builds the category/group skeleton from provider keys of
// the form "Concept/Pin" (eg "Flare/FL"), each mapping to the FRM names seen
// under it. Keys without a "/" are skipped.
func NormalizeFRMs(frmsByLabel map[string][]string, labelOrder []string) []EventCategory {
	result := []EventCategory{}

	for _, label := range labelOrder {
		frmNames, ok := frmsByLabel[label]
		if !ok {
			continue
		}

		parts := strings.SplitN(label, "/", 2)
		if len(parts) != 2 {
			continue
		}

		cat := EventCategory{Name: parts[0], Pin: parts[1]}
		for _, frm := range frmNames {
			cat.Frms = append(cat.Frms, EventTypeGroup{Name: frm, Events: []Event{}})
		}

		result = append(result, cat)
	}

	return result
}

// Normalize - fills the category tree with events. Callers precompute the
// rotated FinalX/FinalY via solargeom for obsTime; here each event is stamped
// with that target time, gets its display label built, and is inserted into
// the first category+group whose pin and FRM name match.
// Events whose category or group is absent are silently dropped - the legacy
// system behaves this way and clients rely on it, so it is not an error.
func Normalize(categories []EventCategory, evs []Event, obsTime time.Time) []EventCategory {
	evs = CollapseActiveRegions(evs)

	for _, ev := range evs {
		ev.CorrectedFor = obsTime
		ev.LabelLines = BuildLabel(&ev)

		insertEvent(categories, ev)
	}

	return categories
}

// insertEvent - linear search, first match wins, append-only
func insertEvent(categories []EventCategory, ev Event) {
	evFrm := NormalizeFrmName(ev.FrmName)

	for ci := range categories {
		if categories[ci].Pin != ev.EventType {
			continue
		}
		for gi := range categories[ci].Frms {
			if NormalizeFrmName(categories[ci].Frms[gi].Name) == evFrm {
				categories[ci].Frms[gi].Events = append(categories[ci].Frms[gi].Events, ev)
				return
			}
		}
		return
	}
}

// CollapseActiveRegions - one NOAA-numbered active region can appear in
// several overlapping records from the same detection method. Keep only the
// record with the shortest time span, but widen its displayed interval to the
// union (earliest start, latest end) across the duplicates. Everything
// without a NOAA number passes through untouched.
func CollapseActiveRegions(evs []Event) []Event {
	type arKey struct {
		frm  string
		noaa string
	}

	type arGroup struct {
		bestIdx    int
		bestSpan   time.Duration
		unionStart time.Time
		unionEnd   time.Time
	}

	groups := map[arKey]*arGroup{}
	result := []Event{}

	for _, ev := range evs {
		noaa := ev.Fields["ar_noaanum"]
		if ev.EventType != "AR" || noaa == "" {
			result = append(result, ev)
			continue
		}

		key := arKey{NormalizeFrmName(ev.FrmName), noaa}
		span := ev.EndTime.Sub(ev.StartTime)

		grp, seen := groups[key]
		if !seen {
			result = append(result, ev)
			groups[key] = &arGroup{
				bestIdx:    len(result) - 1,
				bestSpan:   span,
				unionStart: ev.StartTime,
				unionEnd:   ev.EndTime,
			}
			continue
		}

		// Widen the union
		if ev.StartTime.Before(grp.unionStart) {
			grp.unionStart = ev.StartTime
		}
		if ev.EndTime.After(grp.unionEnd) {
			grp.unionEnd = ev.EndTime
		}

		// Shorter span replaces the kept record, duplicates are dropped
		if span < grp.bestSpan {
			result[grp.bestIdx] = ev
			grp.bestSpan = span
		}
	}

	// Apply union intervals to the survivors
	for _, grp := range groups {
		result[grp.bestIdx].StartTime = grp.unionStart
		result[grp.bestIdx].EndTime = grp.unionEnd
	}

	return result
}
