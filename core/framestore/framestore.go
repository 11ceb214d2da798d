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

// The image index: which JP2 frames exist for each source, and where.
package framestore

import (
	"time"
)

// Frame - one image record from the index. We don't own these, the ingestion
// pipeline writes them; we read them keyed by source and timestamp.
type Frame struct {
	SourceID  int       `bson:"sourceId" json:"sourceId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Filepath  string    `bson:"filepath" json:"filepath"`

	// Provenance, used to resolve the detector family at render time
	Mission    string `bson:"mission" json:"mission"`
	Instrument string `bson:"instrument" json:"instrument"`
	Detector   string `bson:"detector" json:"detector"`

	// Native raster properties
	Width  int     `bson:"width" json:"width"`
	Height int     `bson:"height" json:"height"`
	Scale  float64 `bson:"scale" json:"scale"` // arcsec/pixel

	// Reference pixel offsets: where solar centre sits in the native raster
	RefPixelX float64 `bson:"refPixelX" json:"refPixelX"`
	RefPixelY float64 `bson:"refPixelY" json:"refPixelY"`
}

// FrameStore - read access to the image index. GetFrameRange returns frames
// ordered by timestamp ascending.
type FrameStore interface {
	// Nearest frame in time to the given timestamp
	GetFrame(sourceId int, timestamp time.Time) (*Frame, error)

	GetFrameCount(sourceId int, start time.Time, end time.Time) (int, error)

	// limit <= 0 means no limit
	GetFrameRange(sourceId int, start time.Time, end time.Time, limit int) ([]Frame, error)
}
