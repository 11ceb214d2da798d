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
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solarview/core/core/extractor"
	"github.com/solarview/core/core/framestore"
	"github.com/solarview/core/core/idgen"
)

func writeTestPNG(t *testing.T, dir string, name string, w int, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 90, B: 20, A: 255})
		}
	}

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("%v", err)
	}
	return p
}

func testScreenshotFrame(sourceId int, ts time.Time) framestore.Frame {
	return framestore.Frame{
		SourceID:   sourceId,
		Timestamp:  ts,
		Filepath:   "/data/2024/frame.jp2",
		Width:      4096,
		Height:     4096,
		Scale:      0.6,
		Mission:    "SDO",
		Instrument: "AIA",
		Detector:   "AIA",
	}
}

func Test_takeScreenshot_BadRequests(t *testing.T) {
	svcs := makeMockSvcs(nil)
	apiRouter := MakeRouter(&svcs)

	tests := []struct {
		name      string
		body      string
		expStatus int
		expErrno  int
	}{
		{
			"garbage body",
			`not json`,
			400, 1,
		},
		{
			"bad date",
			`{"date": "sometime", "imageScale": 2, "layers": "[8,1,100]", "x1": -100, "y1": -100, "x2": 100, "y2": 100}`,
			400, 1,
		},
		{
			"inverted region",
			`{"date": "2024-01-01T00:00:00Z", "imageScale": 2, "layers": "[8,1,100]", "x1": 100, "y1": -100, "x2": -100, "y2": 100}`,
			400, 12,
		},
		{
			"no layers",
			`{"date": "2024-01-01T00:00:00Z", "imageScale": 2, "layers": "", "x1": -100, "y1": -100, "x2": 100, "y2": 100}`,
			400, 22,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("POST", "/v2/takeScreenshot", bytes.NewReader([]byte(tc.body)))
			resp := executeRequest(req, apiRouter.Router)
			checkErrorResult(t, resp, tc.expStatus, tc.expErrno)
		})
	}
}

func Test_takeScreenshot_Success(t *testing.T) {
	dir := t.TempDir()
	extracted := writeTestPNG(t, dir, "extract.png", 100, 100)

	obsTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	svcs := makeMockSvcs(&idgen.MockIDGenerator{IDs: []string{"scr111"}})
	svcs.Config.ScratchDir = dir

	svcs.Frames.(*framestore.MemFrameStore).Frames = []framestore.Frame{testScreenshotFrame(8, obsTime)}
	svcs.Extractor.(*extractor.MockExtractor).QueuedResults = []string{extracted}

	apiRouter := MakeRouter(&svcs)

	body := `{"date": "2024-01-01T00:00:00Z", "imageScale": 2, "layers": "[8,1,100]", "x1": -100, "y1": -100, "x2": 100, "y2": 100}`
	req, _ := http.NewRequest("POST", "/v2/takeScreenshot", bytes.NewReader([]byte(body)))
	resp := executeRequest(req, apiRouter.Router)

	if resp.Code != http.StatusOK {
		t.Fatalf("Unexpected status %v: %v", resp.Code, resp.Body.String())
	}

	var created screenshotCreatedResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.Id != "scr111" {
		t.Errorf("Unexpected id: %v", created.Id)
	}

	// The rendered image should now sit in the output bucket
	data, err := svcs.FS.ReadObject(outputBucketForUnitTest, "screenshots/scr111.png")
	if err != nil {
		t.Fatalf("Stored screenshot missing: %v", err)
	}
	if len(data) < 8 || !bytes.Equal(data[1:4], []byte("PNG")) {
		t.Errorf("Stored screenshot is not a PNG, got %v bytes", len(data))
	}

	// Scratch copy is deleted after upload
	if _, err := os.Stat(filepath.Join(dir, "screenshot_scr111.png")); !os.IsNotExist(err) {
		t.Errorf("Scratch file left behind")
	}
}

func Test_downloadScreenshot(t *testing.T) {
	svcs := makeMockSvcs(nil)

	imgBytes := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	if err := svcs.FS.WriteObject(outputBucketForUnitTest, "screenshots/abc123.png", imgBytes); err != nil {
		t.Fatalf("%v", err)
	}

	apiRouter := MakeRouter(&svcs)

	req, _ := http.NewRequest("GET", "/v2/downloadScreenshot/abc123", nil)
	resp := executeRequest(req, apiRouter.Router)

	if resp.Code != http.StatusOK {
		t.Fatalf("Unexpected status %v: %v", resp.Code, resp.Body.String())
	}
	if !bytes.Equal(resp.Body.Bytes(), imgBytes) {
		t.Errorf("Downloaded bytes differ from stored object")
	}
	if disp := resp.Header().Get("Content-Disposition"); disp != `attachment; filename="abc123.png"` {
		t.Errorf("Unexpected disposition: %v", disp)
	}

	// Unknown id 404s
	req, _ = http.NewRequest("GET", "/v2/downloadScreenshot/nosuchthing", nil)
	resp = executeRequest(req, apiRouter.Router)
	checkErrorResult(t, resp, 404, 1)
}
