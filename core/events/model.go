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

// Canonical representation of solar feature/event detections and their
// grouping into detection-method (FRM) and event-type containers.
package events

import (
	"strings"
	"time"
)

// Point - one polygon vertex in helioprojective arcseconds
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event - a single feature/event detection in canonical form.
//
// FinalX/FinalY are only valid after differential-rotation correction has
// been applied for a specific target time; CorrectedFor records which one, so
// an event is always paired with the timestamp it was corrected for.
type Event struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"` // 2-4 char pin, eg "FL"
	FrmName   string `json:"frm_name"`
	Concept   string `json:"concept"`

	StartTime time.Time `json:"event_starttime"`
	EndTime   time.Time `json:"event_endtime"`
	PeakTime  time.Time `json:"event_peaktime,omitempty"`

	// Raw helioprojective coordinates (arcsec) at the event's own time
	HPCX float64 `json:"hpc_x"`
	HPCY float64 `json:"hpc_y"`

	// Optional boundary polygon, ordered vertices in arcsec
	Polygon []Point `json:"hpc_boundcc,omitempty"`

	// Provider fields the label formatters read (NOAA number, GOES class...)
	Fields map[string]string `json:"-"`

	// Derived fields, set during normalisation
	FinalX       float64   `json:"final_x"`
	FinalY       float64   `json:"final_y"`
	CorrectedFor time.Time `json:"corrected_for"`
	LabelLines   []string  `json:"label_lines"`
	LabelVisible bool      `json:"label_visible"`

	// Polygon render metadata - where the rendered mask sits relative to the
	// event position, and where to fetch it
	PolygonOffsetX int    `json:"polygon_offset_x,omitempty"`
	PolygonOffsetY int    `json:"polygon_offset_y,omitempty"`
	PolygonWidth   int    `json:"polygon_width,omitempty"`
	PolygonHeight  int    `json:"polygon_height,omitempty"`
	PolygonURL     string `json:"polygon_url,omitempty"`
}

// EventTypeGroup - one detection method (FRM) and its events
type EventTypeGroup struct {
	Name    string  `json:"name"`
	Contact string  `json:"contact,omitempty"`
	URL     string  `json:"url,omitempty"`
	Events  []Event `json:"data"`
}

// EventCategory - one event-type pin with its FRM groups
type EventCategory struct {
	Name string           `json:"name"` // human label, eg "Flare"
	Pin  string           `json:"pin"`  // eg "FL"
	Frms []EventTypeGroup `json:"groups"`
}

// NormalizeFrmName - provider names contain spaces or underscores
// interchangeably depending on source. One normalisation is used everywhere
// (tree build, queries, label table) so lookups stay bit-for-bit consistent.
func NormalizeFrmName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
