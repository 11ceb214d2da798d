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
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/solarview/core/api/dbCollections"
	"github.com/solarview/core/api/handlers"
	apiRouter "github.com/solarview/core/api/router"
	"github.com/solarview/core/core/errorwithstatus"
	"github.com/solarview/core/core/events"
	"github.com/solarview/core/core/layers"
	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/render"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Screenshots: render a single composited frame and serve it back

const screenshotIdentifier = "id"

type screenshotParams struct {
	Date       string  `json:"date"` // RFC3339 observation time
	ImageScale float64 `json:"imageScale"`

	// Legacy comma-bracket strings, same syntax the old clients send
	Layers      string `json:"layers"`
	Events      string `json:"events"`
	EventLabels bool   `json:"eventLabels"`

	// ROI in arcsec from solar centre
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`

	Watermark bool   `json:"watermark"`
	Scale     string `json:"scale"` // "", "earth" or "bar"
	Eclipse   bool   `json:"eclipse"`
}

type screenshotCreatedResponse struct {
	Id string `json:"id"`
}

// What we keep in Mongo about each rendered screenshot
type screenshotRecord struct {
	Id                 string           `bson:"_id"`
	CreatedUnixTimeSec int64            `bson:"createdUnixTimeSec"`
	Params             screenshotParams `bson:"params"`
}

func registerScreenshotHandler(router *apiRouter.ApiObjectRouter) {
	router.AddJSONHandler(handlers.MakeEndpointPath("v2/takeScreenshot"), "POST", screenshotPost)
	router.AddStreamHandler(handlers.MakeEndpointPath("v2/downloadScreenshot", screenshotIdentifier), "GET", screenshotDownload)
}

func screenshotStoragePath(id string) string {
	return path.Join("screenshots", id+".png")
}

func screenshotPost(params handlers.ApiHandlerParams) (interface{}, error) {
	body, err := io.ReadAll(params.Request.Body)
	if err != nil {
		return nil, err
	}

	var req screenshotParams
	err = json.Unmarshal(body, &req)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(err)
	}

	obsTime, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("invalid date: " + req.Date))
	}

	roi, err := region.NewRegionOfInterest(req.X1, req.Y1, req.X2, req.Y2, req.ImageScale)
	if err != nil {
		return nil, err
	}
	roi.ClampToMaxPixels(int(params.Svcs.Config.MaxOutputPixels))

	layerList, err := layers.ParseLayerString(req.Layers)
	if err != nil {
		return nil, err
	}

	var tree *events.SelectionTree
	if len(req.Events) > 0 {
		tree = events.NewSelectionTreeFromLegacyString(req.Events)
		if !req.EventLabels {
			tree.HideAllLabels()
		}
	}

	id := params.Svcs.IDGen.GenObjectID()

	opts := render.RenderOptions{
		OutputPath:     filepath.Join(params.Svcs.Config.ScratchDir, "screenshot_"+id+".png"),
		HighQuality:    true,
		Watermark:      req.Watermark,
		EclipseOverlay: req.Eclipse,
	}
	switch req.Scale {
	case "earth":
		opts.ScaleIndicator = render.ScaleEarth
	case "bar":
		opts.ScaleIndicator = render.ScaleBar
	}

	localPath, err := params.Svcs.Renderer.RenderFrame(layerList, tree, obsTime, roi, opts)
	if err != nil {
		return nil, err
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, err
	}
	err = params.Svcs.FS.WriteObject(params.Svcs.Config.OutputBucket, screenshotStoragePath(id), data)
	if err != nil {
		return nil, err
	}

	// Save the request record. The image itself is already stored under a
	// deterministic path, so a failure here doesn't lose the screenshot
	if params.Svcs.DB != nil {
		rec := screenshotRecord{
			Id:                 id,
			CreatedUnixTimeSec: params.Svcs.TimeStamper.GetTimeNowSec(),
			Params:             req,
		}
		_, err = params.Svcs.DB.Collection(dbCollections.ScreenshotsName).InsertOne(context.TODO(), rec)
		if err != nil {
			params.Svcs.Log.Errorf("Failed to save screenshot record %v: %v", id, err)
		}
	}

	params.Svcs.Log.Infof("Screenshot %v rendered for %v, layers: %v", id, req.Date, req.Layers)
	return screenshotCreatedResponse{Id: id}, nil
}

func screenshotDownload(params handlers.ApiHandlerStreamParams) (string, string, string, error) {
	id := params.PathParams[screenshotIdentifier]
	if len(id) <= 0 {
		return "", "", "", errorwithstatus.MakeBadRequestError(errors.New("no screenshot id supplied"))
	}

	return params.Svcs.Config.OutputBucket, screenshotStoragePath(id), id + ".png", nil
}
