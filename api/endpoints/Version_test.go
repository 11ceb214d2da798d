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

package endpoints

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func Test_version(t *testing.T) {
	svcs := makeMockSvcs(nil)
	apiRouter := MakeRouter(&svcs)

	req, _ := http.NewRequest("GET", "/version", nil)
	resp := executeRequest(req, apiRouter.Router)

	if resp.Code != http.StatusOK {
		t.Errorf("Unexpected status: %v", resp.Code)
	}

	var ver ComponentVersionsGetResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &ver); err != nil {
		t.Fatalf("Failed to parse version response: %v", err)
	}

	if len(ver.Components) != 1 || ver.Components[0].Component != "API" {
		t.Errorf("Unexpected components: %+v", ver.Components)
	}
	// No build vars set in tests, so expect the local fallback
	if ver.Components[0].Version != "N/A - Local build" {
		t.Errorf("Unexpected version: %v", ver.Components[0].Version)
	}
}

func Test_rootPage(t *testing.T) {
	svcs := makeMockSvcs(nil)
	apiRouter := MakeRouter(&svcs)

	req, _ := http.NewRequest("GET", "/", nil)
	resp := executeRequest(req, apiRouter.Router)

	if resp.Code != http.StatusOK {
		t.Errorf("Unexpected status: %v", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "<h1>SolarView API</h1>") {
		t.Errorf("Root page missing title, got: %v", resp.Body.String())
	}
}
