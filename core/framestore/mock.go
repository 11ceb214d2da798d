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

package framestore

import (
	"fmt"
	"sort"
	"time"
)

// MemFrameStore - in-memory frame index for unit tests
type MemFrameStore struct {
	Frames []Frame
}

func (s *MemFrameStore) forSource(sourceId int) []Frame {
	result := []Frame{}
	for _, f := range s.Frames {
		if f.SourceID == sourceId {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result
}

func (s *MemFrameStore) GetFrame(sourceId int, timestamp time.Time) (*Frame, error) {
	var best *Frame
	var bestDelta time.Duration

	for _, f := range s.forSource(sourceId) {
		delta := f.Timestamp.Sub(timestamp)
		if delta < 0 {
			delta = -delta
		}
		if best == nil || delta < bestDelta {
			frameCopy := f
			best = &frameCopy
			bestDelta = delta
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no frames for source %v", sourceId)
	}
	return best, nil
}

func (s *MemFrameStore) GetFrameCount(sourceId int, start time.Time, end time.Time) (int, error) {
	frames, err := s.GetFrameRange(sourceId, start, end, 0)
	return len(frames), err
}

func (s *MemFrameStore) GetFrameRange(sourceId int, start time.Time, end time.Time, limit int) ([]Frame, error) {
	result := []Frame{}
	for _, f := range s.forSource(sourceId) {
		if !f.Timestamp.Before(start) && !f.Timestamp.After(end) {
			result = append(result, f)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}
