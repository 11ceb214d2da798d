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

import "strings"

// SourceFamily - closed set of detector families we know how to render. The
// legacy system derived a handler class name by concatenating label strings;
// here the family is picked from a lookup table keyed on (mission,
// instrument, detector) and carries the per-family render capabilities.
type SourceFamily int

const (
	FamilyGeneric SourceFamily = iota
	FamilyAIA
	FamilyHMI
	FamilyLASCO
	FamilyCOR
	FamilySWAP
	FamilySUVI
	FamilyXRT
	FamilySXT
	FamilyRHESSI
	FamilyPUNCH
	FamilyGONG
	FamilyCOSMO
)

// FamilyCapabilities - what a detector family needs at render time
type FamilyCapabilities struct {
	ColorTable     string // name of the colour table asset
	AlphaMaskShape string // "", "circle-inner" (solar disk) or "annulus" (occulter)
	WatermarkLabel string
	// Occulter layers composite above disk layers
	LayerOrder int
}

var familyCapabilities = map[SourceFamily]FamilyCapabilities{
	FamilyGeneric: {ColorTable: "gray", LayerOrder: 1},
	FamilyAIA:     {ColorTable: "aia", WatermarkLabel: "SDO AIA", LayerOrder: 1},
	FamilyHMI:     {ColorTable: "gray", WatermarkLabel: "SDO HMI", LayerOrder: 1},
	FamilyLASCO:   {ColorTable: "lasco", AlphaMaskShape: "annulus", WatermarkLabel: "SOHO LASCO", LayerOrder: 2},
	FamilyCOR:     {ColorTable: "cor", AlphaMaskShape: "annulus", WatermarkLabel: "STEREO COR", LayerOrder: 2},
	FamilySWAP:    {ColorTable: "swap", WatermarkLabel: "PROBA-2 SWAP", LayerOrder: 1},
	FamilySUVI:    {ColorTable: "suvi", WatermarkLabel: "GOES-R SUVI", LayerOrder: 1},
	FamilyXRT:     {ColorTable: "xrt", WatermarkLabel: "Hinode XRT", LayerOrder: 1},
	FamilySXT:     {ColorTable: "sxt", WatermarkLabel: "Yohkoh SXT", LayerOrder: 1},
	FamilyRHESSI:  {ColorTable: "rhessi", WatermarkLabel: "RHESSI", LayerOrder: 1},
	FamilyPUNCH:   {ColorTable: "punch", AlphaMaskShape: "annulus", WatermarkLabel: "PUNCH", LayerOrder: 2},
	FamilyGONG:    {ColorTable: "gong", WatermarkLabel: "NSO GONG", LayerOrder: 1},
	FamilyCOSMO:   {ColorTable: "cosmo", AlphaMaskShape: "annulus", WatermarkLabel: "COSMO K-Cor", LayerOrder: 2},
}

// Capabilities - render capabilities for a family. Unknown families behave as
// generic.
func (f SourceFamily) Capabilities() FamilyCapabilities {
	caps, ok := familyCapabilities[f]
	if !ok {
		return familyCapabilities[FamilyGeneric]
	}
	return caps
}

type familyKey struct {
	mission    string
	instrument string
	detector   string
}

var familyLookup = map[familyKey]SourceFamily{
	{"SDO", "AIA", "AIA"}:          FamilyAIA,
	{"SDO", "HMI", "HMI"}:          FamilyHMI,
	{"SOHO", "LASCO", "C2"}:        FamilyLASCO,
	{"SOHO", "LASCO", "C3"}:        FamilyLASCO,
	{"STEREO_A", "SECCHI", "COR1"}: FamilyCOR,
	{"STEREO_A", "SECCHI", "COR2"}: FamilyCOR,
	{"STEREO_B", "SECCHI", "COR1"}: FamilyCOR,
	{"STEREO_B", "SECCHI", "COR2"}: FamilyCOR,
	{"PROBA2", "SWAP", "SWAP"}:     FamilySWAP,
	{"GOES-R", "SUVI", "SUVI"}:     FamilySUVI,
	{"Hinode", "XRT", "XRT"}:       FamilyXRT,
	{"Yohkoh", "SXT", "SXT"}:       FamilySXT,
	{"RHESSI", "RHESSI", "RHESSI"}: FamilyRHESSI,
	{"PUNCH", "WFI", "WFI"}:        FamilyPUNCH,
	{"PUNCH", "NFI", "NFI"}:        FamilyPUNCH,
	{"NSO-GONG", "GONG", "GONG"}:   FamilyGONG,
	{"MLSO", "COSMO", "KCor"}:      FamilyCOSMO,
}

// LookupFamily - (mission, instrument, detector) to family, case-insensitive
func LookupFamily(mission string, instrument string, detector string) SourceFamily {
	key := familyKey{strings.ToUpper(mission), strings.ToUpper(instrument), strings.ToUpper(detector)}
	for k, family := range familyLookup {
		if strings.EqualFold(k.mission, key.mission) &&
			strings.EqualFold(k.instrument, key.instrument) &&
			strings.EqualFold(k.detector, key.detector) {
			return family
		}
	}
	return FamilyGeneric
}
