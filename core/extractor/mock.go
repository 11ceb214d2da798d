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

package extractor

import (
	"fmt"

	"github.com/solarview/core/core/region"
)

// MockExtractor - replays queued results, recording what was asked for
type MockExtractor struct {
	// Queued result paths, "" means fail that call
	QueuedResults []string

	RequestedFiles []string
}

func (m *MockExtractor) ExtractRegion(sourceFile string, roi region.RegionOfInterest, scaleFactor float64) (string, error) {
	m.RequestedFiles = append(m.RequestedFiles, sourceFile)

	if len(m.QueuedResults) <= 0 {
		return "", fmt.Errorf("unexpected ExtractRegion call for %v", sourceFile)
	}

	result := m.QueuedResults[0]
	m.QueuedResults = m.QueuedResults[1:]

	if result == "" {
		return "", fmt.Errorf("extraction failed for %v", sourceFile)
	}
	return result, nil
}
