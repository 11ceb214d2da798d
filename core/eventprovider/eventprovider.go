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

// Access to the raw feature/event records ingested from upstream catalogues.
package eventprovider

import (
	"time"

	"github.com/solarview/core/core/events"
)

// EventProvider - raw, unnormalised event records whose interval covers an
// observation time. Sources is a list of catalogue names ("HEK", "CCMC"...),
// empty means all.
type EventProvider interface {
	GetEventsForObservation(timestamp time.Time, sources []string) ([]events.Event, error)

	// FRM names seen per "Concept/Pin" label, for building the category tree
	GetFRMs(timestamp time.Time, sources []string) (map[string][]string, []string, error)
}
