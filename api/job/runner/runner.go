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

// The frame worker runtime. The API dispatches one worker process per movie
// frame (docker or kubernetes); each worker reads its config from an env var,
// renders its single frame, uploads the raster and bumps the job counters.
// Workers share nothing in memory, each invocation owns its own output path.
package jobrunner

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/solarview/core/api/job"
	"github.com/solarview/core/core/awsutil"
	"github.com/solarview/core/core/eventprovider"
	"github.com/solarview/core/core/events"
	"github.com/solarview/core/core/extractor"
	"github.com/solarview/core/core/fileaccess"
	"github.com/solarview/core/core/framestore"
	"github.com/solarview/core/core/layers"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/mongoconn"
	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/render"
	"github.com/solarview/core/core/timestamper"
)

var JobConfigEnvVar = "FRAME_JOB_CONFIG"

// Kubernetes indexed-completion jobs give every pod the same config blob, so
// the pod's completion index picks which frame it owns
var NodeIndexEnvVar = "NODE_INDEX"

// FrameJob - everything one worker needs to render its frame. Marshalled to
// JSON and passed via env var by the job starter.
type FrameJob struct {
	JobId      string   `json:"jobId"`
	MovieId    string   `json:"movieId"`
	FrameIndex int      `json:"frameIndex"`
	Timestamps []string `json:"timestamps"` // RFC3339, every frame of the movie

	Layers      string `json:"layers"`
	EventsState string `json:"eventsState"`

	RoiLeft   float64 `json:"roiLeft"`
	RoiTop    float64 `json:"roiTop"`
	RoiRight  float64 `json:"roiRight"`
	RoiBottom float64 `json:"roiBottom"`
	Scale     float64 `json:"scale"`

	OutputBucket string `json:"outputBucket"`
	MasksBucket  string `json:"masksBucket"`
	OutputFormat string `json:"outputFormat"` // png or jpg

	CodecPath       string `json:"codecPath"`
	ScratchDir      string `json:"scratchDir"`
	CodecTimeoutSec uint   `json:"codecTimeoutSec"`

	EnvironmentName string `json:"environmentName"`
	MongoSecret     string `json:"mongoSecret"`

	Watermark      bool   `json:"watermark"`
	EventLabels    bool   `json:"eventLabels"`
	ScaleIndicator string `json:"scaleIndicator"` // "", "earth" or "bar"
	MovieSize      string `json:"movieSize"`
	FollowViewport bool   `json:"followViewport"`
	HighQuality    bool   `json:"highQuality"`
}

func (c FrameJob) Copy() FrameJob {
	return c
}

// FrameUploadPath - where a rendered frame lives in the output bucket
func FrameUploadPath(movieId string, frameIndex int, format string) string {
	return path.Join("movies", movieId, "frames", fmt.Sprintf("frame_%05d.%v", frameIndex, format))
}

// RunJob - the worker entry point. Reads config from the env var and renders
// the frame this worker owns.
func RunJob() error {
	cfgStr := os.Getenv(JobConfigEnvVar)
	if len(cfgStr) <= 0 {
		return fmt.Errorf(JobConfigEnvVar + " env var not set")
	}

	var cfg FrameJob
	err := json.Unmarshal([]byte(cfgStr), &cfg)
	if err != nil {
		return fmt.Errorf("Failed to parse env var %v: %v", JobConfigEnvVar, err)
	}

	// Indexed-completion pods get their frame from the index env var
	if idxStr := os.Getenv(NodeIndexEnvVar); len(idxStr) > 0 {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return fmt.Errorf("Failed to parse %v=%v: %v", NodeIndexEnvVar, idxStr, err)
		}
		cfg.FrameIndex = idx
	}

	return RunFrameJob(cfg, &logger.StdOutLogger{})
}

// RunFrameJob renders one movie frame and reports the result into the job
// status collection. A single frame failing is reported, not fatal to the movie.
func RunFrameJob(cfg FrameJob, jobLog logger.ILogger) error {
	jobLog.Infof("Preparing frame %v of movie %v (job %v)", cfg.FrameIndex, cfg.MovieId, cfg.JobId)

	if cfg.FrameIndex < 0 || cfg.FrameIndex >= len(cfg.Timestamps) {
		return fmt.Errorf("Frame index %v out of range, movie has %v frames", cfg.FrameIndex, len(cfg.Timestamps))
	}

	obsTime, err := time.Parse(time.RFC3339, cfg.Timestamps[cfg.FrameIndex])
	if err != nil {
		return fmt.Errorf("Failed to parse frame timestamp %v: %v", cfg.Timestamps[cfg.FrameIndex], err)
	}

	sess, err := awsutil.GetSession()
	if err != nil {
		return fmt.Errorf("Failed to create AWS session. Error: %v", err)
	}

	s3svc, err := awsutil.GetS3(sess)
	if err != nil {
		return fmt.Errorf("Failed to create AWS S3 service. Error: %v", err)
	}

	remoteFS := fileaccess.MakeS3Access(s3svc)

	mongoClient, err := mongoconn.Connect(sess, cfg.MongoSecret, jobLog)
	if err != nil {
		return fmt.Errorf("Failed to connect to mongo: %v", err)
	}
	db := mongoClient.Database(mongoconn.GetDatabaseName("solarview", cfg.EnvironmentName))
	ts := &timestamper.UnixTimeNowStamper{}

	renderer := &render.CompositeRenderer{
		Frames:     framestore.MakeMongoFrameStore(db),
		Events:     eventprovider.MakeMongoEventProvider(db),
		Extract:    extractor.MakeCodecExtractor(cfg.CodecPath, cfg.ScratchDir, cfg.CodecTimeoutSec, jobLog),
		Masks:      remoteFS,
		MaskBucket: cfg.MasksBucket,
		Log:        jobLog,
	}

	localPath, err := renderFrame(renderer, &cfg, obsTime)
	if err != nil {
		job.MarkFrameDone(cfg.JobId, true, db, ts, jobLog)
		return fmt.Errorf("Frame %v of movie %v failed: %v", cfg.FrameIndex, cfg.MovieId, err)
	}
	defer os.Remove(localPath)

	// Upload
	data, err := os.ReadFile(localPath)
	if err == nil {
		err = remoteFS.WriteObject(cfg.OutputBucket, FrameUploadPath(cfg.MovieId, cfg.FrameIndex, cfg.OutputFormat), data)
	}
	if err != nil {
		job.MarkFrameDone(cfg.JobId, true, db, ts, jobLog)
		return fmt.Errorf("Frame %v of movie %v upload failed: %v", cfg.FrameIndex, cfg.MovieId, err)
	}

	job.MarkFrameDone(cfg.JobId, false, db, ts, jobLog)
	jobLog.Infof("Frame %v of movie %v complete", cfg.FrameIndex, cfg.MovieId)
	return nil
}

func renderFrame(renderer *render.CompositeRenderer, cfg *FrameJob, obsTime time.Time) (string, error) {
	roi, err := region.NewRegionOfInterest(cfg.RoiLeft, cfg.RoiTop, cfg.RoiRight, cfg.RoiBottom, cfg.Scale)
	if err != nil {
		return "", err
	}

	layerList, err := layers.ParseLayerString(cfg.Layers)
	if err != nil {
		return "", err
	}

	var tree *events.SelectionTree
	if len(cfg.EventsState) > 0 {
		tree = events.NewSelectionTreeFromLegacyString(cfg.EventsState)
		if !cfg.EventLabels {
			tree.HideAllLabels()
		}
	}

	format := cfg.OutputFormat
	if format == "" {
		format = "png"
	}

	movieStart := time.Time{}
	if cfg.FollowViewport && len(cfg.Timestamps) > 0 {
		movieStart, err = time.Parse(time.RFC3339, cfg.Timestamps[0])
		if err != nil {
			return "", err
		}
	}

	opts := render.RenderOptions{
		OutputPath:     path.Join(cfg.ScratchDir, fmt.Sprintf("%v_frame_%05d.%v", cfg.MovieId, cfg.FrameIndex, format)),
		HighQuality:    cfg.HighQuality,
		MovieSize:      cfg.MovieSize,
		FollowViewport: cfg.FollowViewport,
		MovieStartTime: movieStart,
		Watermark:      cfg.Watermark,
	}

	switch cfg.ScaleIndicator {
	case "earth":
		opts.ScaleIndicator = render.ScaleEarth
	case "bar":
		opts.ScaleIndicator = render.ScaleBar
	}

	return renderer.RenderFrame(layerList, tree, obsTime, roi, opts)
}
