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

package render

import "strings"

type movieSize struct {
	width  int
	height int
}

var movieSizes = map[string]movieSize{
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"1440p": {2560, 1440},
	"4k":    {3840, 2160},
}

// MovieSizeDimensions - resolves a movie size preset name, case insensitive.
// Returns false for an empty or unknown name, meaning no downscale.
func MovieSizeDimensions(name string) (int, int, bool) {
	size, ok := movieSizes[strings.ToLower(name)]
	if !ok {
		return 0, 0, false
	}
	return size.width, size.height, true
}
