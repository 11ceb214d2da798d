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

// Requested image-source overlays and their compositing order.
package layers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/solarview/core/core/errorwithstatus"
)

// Difference modes for a layer
const (
	DiffNone = 0
	// Running difference: compare against an earlier frame a fixed interval back
	DiffRunning = 1
	// Base difference: compare against the frame at a fixed base time
	DiffBase = 2
)

// Layer - one requested image source overlay
type Layer struct {
	SourceID int
	Family   SourceFamily

	// Compositing order, 1 = base disk imagery. Coronagraph/occulter layers
	// get > 1 and composite above every order-1 layer.
	Order int

	// 0-100
	Opacity int

	DiffMode int
	// For DiffRunning: how far back the comparison frame is
	DiffTimeOffset time.Duration
	// For DiffBase: the fixed comparison time
	BaseDiffTime time.Time
}

// ParseLayerString - parses the legacy layer request format:
// "[sourceId,visible,opacity]" groups, optionally with difference fields
// "[sourceId,visible,opacity,diffMode,diffOffsetSec,baseDiffTime]", joined by
// "],[". Hidden layers (visible = 0) are dropped. Validation failures are
// surfaced immediately with the legacy error code.
func ParseLayerString(raw string) ([]Layer, error) {
	result := []Layer{}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if len(raw) == 0 {
		return result, errorwithstatus.MakeMalformedSelectionError("empty layer string")
	}

	for _, group := range strings.Split(raw, "],[") {
		parts := strings.Split(group, ",")
		if len(parts) < 3 {
			return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("malformed layer group: [%v]", group))
		}

		sourceId, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("bad source id in layer group: [%v]", group))
		}

		visible := parts[1] == "1" || strings.EqualFold(parts[1], "true")
		if !visible {
			continue
		}

		opacity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || opacity < 0 || opacity > 100 {
			return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("bad opacity in layer group: [%v]", group))
		}

		layer := Layer{SourceID: sourceId, Opacity: opacity, Order: 1}

		if len(parts) >= 5 {
			diffMode, err := strconv.Atoi(strings.TrimSpace(parts[3]))
			if err != nil || diffMode < DiffNone || diffMode > DiffBase {
				return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("bad difference mode in layer group: [%v]", group))
			}
			layer.DiffMode = diffMode

			if diffMode == DiffRunning {
				offsetSec, err := strconv.Atoi(strings.TrimSpace(parts[4]))
				if err != nil || offsetSec <= 0 {
					return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("bad difference offset in layer group: [%v]", group))
				}
				layer.DiffTimeOffset = time.Duration(offsetSec) * time.Second
			} else if diffMode == DiffBase {
				if len(parts) < 6 {
					return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("base difference needs a base time: [%v]", group))
				}
				baseTime, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[5]))
				if err != nil {
					return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("bad base difference time: [%v]", group))
				}
				layer.BaseDiffTime = baseTime
			}
		}

		result = append(result, layer)
	}

	if len(result) == 0 {
		return nil, errorwithstatus.MakeMalformedSelectionError(fmt.Sprintf("no visible layers in: %v", raw))
	}

	return result, nil
}

// ComparisonTime - the timestamp a differenced layer compares against
func (l *Layer) ComparisonTime(obsTime time.Time) time.Time {
	switch l.DiffMode {
	case DiffRunning:
		return obsTime.Add(-l.DiffTimeOffset)
	case DiffBase:
		return l.BaseDiffTime
	}
	return time.Time{}
}

// SortForCompositing - orders layers for bottom-to-top compositing: order-1
// disk layers first (stable among themselves), then occulter layers by
// ascending order.
func SortForCompositing(list []Layer) []Layer {
	result := make([]Layer, 0, len(list))

	for _, l := range list {
		if l.Order <= 1 {
			result = append(result, l)
		}
	}

	// Occulters ascending by order
	maxOrder := 1
	for _, l := range list {
		if l.Order > maxOrder {
			maxOrder = l.Order
		}
	}
	for order := 2; order <= maxOrder; order++ {
		for _, l := range list {
			if l.Order == order {
				result = append(result, l)
			}
		}
	}

	return result
}
