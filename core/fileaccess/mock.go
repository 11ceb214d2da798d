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

package fileaccess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// In-memory file access implementation for unit tests. Keys are
// "bucket/path" so one mock can stand in for several buckets.
type MemFileAccess struct {
	Files map[string][]byte
}

func MakeMemFileAccess() *MemFileAccess {
	return &MemFileAccess{Files: map[string][]byte{}}
}

func (m *MemFileAccess) key(bucket string, path string) string {
	return bucket + "/" + path
}

func (m *MemFileAccess) ListObjects(bucket string, prefix string) ([]string, error) {
	result := []string{}
	find := m.key(bucket, prefix)
	for k := range m.Files {
		if strings.HasPrefix(k, find) {
			result = append(result, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	return result, nil
}

func (m *MemFileAccess) ObjectExists(bucket string, path string) (bool, error) {
	_, ok := m.Files[m.key(bucket, path)]
	return ok, nil
}

func (m *MemFileAccess) ReadObject(bucket string, path string) ([]byte, error) {
	data, ok := m.Files[m.key(bucket, path)]
	if !ok {
		return nil, fmt.Errorf("not found: %v", m.key(bucket, path))
	}
	return data, nil
}

func (m *MemFileAccess) WriteObject(bucket string, path string, data []byte) error {
	m.Files[m.key(bucket, path)] = data
	return nil
}

func (m *MemFileAccess) ReadJSON(bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	data, err := m.ReadObject(bucket, path)
	if err != nil {
		if emptyIfNotFound {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, itemsPtr)
}

func (m *MemFileAccess) WriteJSON(bucket string, path string, itemsPtr interface{}) error {
	data, err := json.MarshalIndent(itemsPtr, "", "    ")
	if err != nil {
		return err
	}
	return m.WriteObject(bucket, path, data)
}

func (m *MemFileAccess) DeleteObject(bucket string, path string) error {
	delete(m.Files, m.key(bucket, path))
	return nil
}

func (m *MemFileAccess) CopyObject(srcBucket string, srcPath string, dstBucket string, dstPath string) error {
	data, err := m.ReadObject(srcBucket, srcPath)
	if err != nil {
		return err
	}
	return m.WriteObject(dstBucket, dstPath, data)
}

func (m *MemFileAccess) IsNotFoundError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "not found: ")
}
