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

// Small helpers shared across the API and render pipeline
package utils

import (
	"math/rand"
	"sort"

	"golang.org/x/exp/maps"
)

const PrettyPrintIndentForJSON = "    "

// Random string generation, used for object IDs and scratch file names
const RandomStringChars = "abcdefghijklmnopqrstuvwxyz1234567890"

const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

func RandStringBytesMaskImpr(n int) string {
	b := make([]byte, n)
	for i, cache, remain := n-1, rand.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = rand.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(RandomStringChars) {
			b[i] = RandomStringChars[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}

	return string(b)
}

// GetStringMapKeysSorted - map keys in deterministic order, so responses and
// log lines are stable for tests
func GetStringMapKeysSorted[T any](m map[string]T) []string {
	keys := maps.Keys(m)
	sort.Strings(keys)
	return keys
}

func AbsI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
