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
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/solarview/core/api/config"
	"github.com/solarview/core/api/services"
	"github.com/solarview/core/core/encoder"
	"github.com/solarview/core/core/eventprovider"
	"github.com/solarview/core/core/extractor"
	"github.com/solarview/core/core/fileaccess"
	"github.com/solarview/core/core/framestore"
	"github.com/solarview/core/core/idgen"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/render"
	"github.com/solarview/core/core/timestamper"
)

const masksBucketForUnitTest = "masks-bucket"
const outputBucketForUnitTest = "output-bucket"

// The error body shape handlers serve, redeclared here so tests parse it the
// way a client would
type errorBody struct {
	Error string `json:"error"`
	Errno int    `json:"errno"`
}

func makeMockSvcs(idGen idgen.IDGenerator) services.APIServices {
	cfg := config.APIConfig{
		EnvironmentName:  "unit-test",
		LogLevel:         logger.LogDebug,
		MasksBucket:      masksBucketForUnitTest,
		OutputBucket:     outputBucketForUnitTest,
		MaxOutputPixels:  4096,
		MaxMovieFrames:   300,
		MaxFrameFailures: 3,
		MovieExecutor:    "null",
	}

	if idGen == nil {
		idGen = &idgen.IDGen{}
	}

	fs := fileaccess.MakeMemFileAccess()
	frames := &framestore.MemFrameStore{}
	evs := &eventprovider.MemEventProvider{}
	extract := &extractor.MockExtractor{}
	videoEnc := &encoder.MockEncoder{}
	log := &logger.NullLogger{}

	renderer := &render.CompositeRenderer{
		Frames:     frames,
		Events:     evs,
		Extract:    extract,
		Masks:      fs,
		MaskBucket: cfg.MasksBucket,
		Log:        log,
	}

	return services.APIServices{
		Config:      cfg,
		Log:         log,
		FS:          fs,
		IDGen:       idGen,
		TimeStamper: &timestamper.UnixTimeNowStamper{},
		Frames:      frames,
		Events:      evs,
		Extractor:   extract,
		Encoder:     videoEnc,
		Renderer:    renderer,
	}
}

func executeRequest(req *http.Request, router *mux.Router) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func checkErrorResult(t *testing.T, resp *httptest.ResponseRecorder, expStatus int, expErrno int) {
	t.Helper()

	if resp.Code != expStatus {
		t.Errorf("Expected status %v, got %v. Body: %v", expStatus, resp.Code, resp.Body.String())
	}

	var body errorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse error body %v: %v", resp.Body.String(), err)
	}
	if body.Errno != expErrno {
		t.Errorf("Expected errno %v, got %v (%v)", expErrno, body.Errno, body.Error)
	}
}
