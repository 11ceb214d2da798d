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

package encoder

import "os"

type EncodeRequest struct {
	FrameDir     string
	FramePattern string
	FrameRate    int
	OutputPath   string
}

// MockEncoder - writes canned bytes instead of running the encoder binary,
// recording what it was asked for and which frame files existed at the time
type MockEncoder struct {
	Output []byte
	Err    error

	Requests   []EncodeRequest
	SeenFrames []string
}

func (m *MockEncoder) EncodeMovie(frameDir string, framePattern string, frameRate int, outputPath string) error {
	m.Requests = append(m.Requests, EncodeRequest{frameDir, framePattern, frameRate, outputPath})

	entries, err := os.ReadDir(frameDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		m.SeenFrames = append(m.SeenFrames, entry.Name())
	}

	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(outputPath, m.Output, 0600)
}
