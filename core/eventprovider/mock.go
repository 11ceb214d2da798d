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

package eventprovider

import (
	"time"

	"github.com/solarview/core/core/events"
)

// MemEventProvider - canned events and FRM catalog for unit tests
type MemEventProvider struct {
	Events   []events.Event
	FRMs     map[string][]string
	FRMOrder []string

	// Set to make every call fail
	Err error
}

func (p *MemEventProvider) GetEventsForObservation(timestamp time.Time, sources []string) ([]events.Event, error) {
	if p.Err != nil {
		return nil, p.Err
	}

	result := []events.Event{}
	for _, ev := range p.Events {
		if ev.StartTime.After(timestamp) || ev.EndTime.Before(timestamp) {
			continue
		}
		result = append(result, ev)
	}
	return result, nil
}

func (p *MemEventProvider) GetFRMs(timestamp time.Time, sources []string) (map[string][]string, []string, error) {
	if p.Err != nil {
		return nil, nil, p.Err
	}
	return p.FRMs, p.FRMOrder, nil
}
