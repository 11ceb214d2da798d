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
	"fmt"
	"strings"
)

// Label construction is event-type and detection-method specific. It is data,
// not algorithm, so it lives in a lookup table keyed on (event_type,
// normalised frm_name) rather than branching code.

type labelFormatter func(ev *Event) []string

type labelKey struct {
	eventType string
	frmName   string // normalised; empty matches any FRM of the type
}

var labelFormatters = map[labelKey]labelFormatter{
	{"AR", "NOAA_SWPC_Observer"}: formatNOAAActiveRegion,
	{"AR", "HMI_SHARP"}:          formatHMISharp,
	{"FL", "SWPC"}:               formatGOESFlare,
	{"FL", "SSW_Latest_Events"}:  formatGOESFlare,
	{"FL", ""}:                   formatPeakFluxFlare,
	{"CE", "CACTus_(Computer_Aided_CME_Tracking)"}: formatCACTusCME,
	{"CE", ""}: formatCME,
}

// Mount Wilson classifications arrive as words, display uses Greek letters
var greekSubstitutions = strings.NewReplacer(
	"ALPHA", "α",
	"BETA", "β",
	"GAMMA", "γ",
	"DELTA", "δ",
)

// BuildLabel - multi-line display label for an event. Dispatch: exact
// (type, frm) match first, then a type-wide formatter, then the concept.
func BuildLabel(ev *Event) []string {
	frm := NormalizeFrmName(ev.FrmName)

	if formatter, ok := labelFormatters[labelKey{ev.EventType, frm}]; ok {
		return formatter(ev)
	}
	if formatter, ok := labelFormatters[labelKey{ev.EventType, ""}]; ok {
		return formatter(ev)
	}

	return []string{ev.Concept}
}

func formatNOAAActiveRegion(ev *Event) []string {
	lines := []string{}

	if noaa := ev.Fields["ar_noaanum"]; noaa != "" {
		lines = append(lines, "NOAA "+noaa)
	}
	if mtw := ev.Fields["ar_mtwilsoncls"]; mtw != "" {
		lines = append(lines, greekSubstitutions.Replace(strings.ToUpper(mtw)))
	}

	if len(lines) == 0 {
		lines = append(lines, ev.Concept)
	}
	return lines
}

func formatHMISharp(ev *Event) []string {
	if sharp := ev.Fields["ar_sharpnum"]; sharp != "" {
		return []string{"SHARP " + sharp}
	}
	return []string{ev.Concept}
}

func formatGOESFlare(ev *Event) []string {
	if cls := ev.Fields["fl_goescls"]; cls != "" {
		return []string{cls}
	}
	return []string{ev.Concept}
}

func formatPeakFluxFlare(ev *Event) []string {
	if flux := ev.Fields["fl_peakflux"]; flux != "" {
		return []string{fmt.Sprintf("Peak flux: %v", flux)}
	}
	return []string{ev.Concept}
}

func formatCACTusCME(ev *Event) []string {
	lines := []string{}

	vel := ev.Fields["cme_radiallinvel"]
	if vel != "" {
		line := vel
		if uncert := ev.Fields["cme_radiallinveluncert"]; uncert != "" {
			line += "±" + uncert
		}
		lines = append(lines, line+" km/s")
	}
	if width := ev.Fields["cme_angularwidth"]; width != "" {
		lines = append(lines, width+"°")
	}

	if len(lines) == 0 {
		lines = append(lines, ev.Concept)
	}
	return lines
}

func formatCME(ev *Event) []string {
	if vel := ev.Fields["cme_radiallinvel"]; vel != "" {
		return []string{vel + " km/s"}
	}
	return []string{ev.Concept}
}
