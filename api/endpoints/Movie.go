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
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/solarview/core/api/dbCollections"
	"github.com/solarview/core/api/handlers"
	"github.com/solarview/core/api/job"
	"github.com/solarview/core/api/job/jobstarter"
	jobrunner "github.com/solarview/core/api/job/runner"
	apiRouter "github.com/solarview/core/api/router"
	"github.com/solarview/core/api/services"
	"github.com/solarview/core/core/errorwithstatus"
	"github.com/solarview/core/core/frameselect"
	"github.com/solarview/core/core/layers"
	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/render"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Movies: select frames, fan rendering out to frame workers, poll status,
// download the result

const movieIdentifier = "id"

// Playback rate of assembled movies
const movieFrameRate = 15

type movieParams struct {
	StartTime  string  `json:"startTime"` // RFC3339
	EndTime    string  `json:"endTime"`   // RFC3339
	ImageScale float64 `json:"imageScale"`

	Layers      string `json:"layers"`
	Events      string `json:"events"`
	EventLabels bool   `json:"eventLabels"`

	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`

	// 0 means auto, ie use every available frame up to the cap
	CadenceSec int `json:"cadence"`
	MaxFrames  int `json:"maxFrames"`

	Format         string `json:"format"` // frame format, png or jpg
	Size           string `json:"size"`   // 720p/1080p/1440p/4k, empty = native
	FollowViewport bool   `json:"followViewport"`
	Watermark      bool   `json:"watermark"`
	Scale          string `json:"scale"` // "", "earth" or "bar"
}

type movieQueuedResponse struct {
	JobId      string `json:"jobId"`
	MovieId    string `json:"movieId"`
	FrameCount int    `json:"frameCount"`
	CadenceSec int    `json:"cadence"`
	Advisory   string `json:"advisory,omitempty"`
}

type movieRecord struct {
	Id                 string      `bson:"_id"`
	JobId              string      `bson:"jobId"`
	CreatedUnixTimeSec int64       `bson:"createdUnixTimeSec"`
	Timestamps         []string    `bson:"timestamps"`
	Params             movieParams `bson:"params"`
}

func registerMovieHandler(router *apiRouter.ApiObjectRouter) {
	router.AddJSONHandler(handlers.MakeEndpointPath("v2/queueMovie"), "POST", queueMoviePost)
	router.AddJSONHandler(handlers.MakeEndpointPath("v2/getMovieStatus", movieIdentifier), "GET", getMovieStatus)
	router.AddStreamHandler(handlers.MakeEndpointPath("v2/downloadMovie", movieIdentifier), "GET", movieDownload)
}

func movieStoragePath(movieId string) string {
	return path.Join("movies", movieId+".mp4")
}

// selectMovieTimestamps - multi-layer frame selection. Availability per layer
// feeds the fair budget split, and the sparsest layer becomes the timeline
// reference so the cadence never outruns the thinnest data. The timeline
// itself is always capped by the global frame budget, never by a single
// layer's share: two layers with 5 frames each and a cap of 5 yield a 5 frame
// movie, not a 2 frame one.
func selectMovieTimestamps(svcs *services.APIServices, layerList []layers.Layer, startTime time.Time, endTime time.Time, cadenceSec int, maxFrames int) (frameselect.Selection, error) {
	availability := []frameselect.LayerAvailability{}
	for _, l := range layerList {
		count, err := svcs.Frames.GetFrameCount(l.SourceID, startTime, endTime)
		if err != nil {
			return frameselect.Selection{}, err
		}
		availability = append(availability, frameselect.LayerAvailability{SourceID: l.SourceID, FrameCount: count})
	}

	budget := frameselect.AllocateFrameBudget(availability, maxFrames)

	refSource := availability[0].SourceID
	refCount := availability[0].FrameCount
	for _, a := range availability[1:] {
		if a.FrameCount < refCount || (a.FrameCount == refCount && a.SourceID < refSource) {
			refSource = a.SourceID
			refCount = a.FrameCount
		}
	}

	svcs.Log.Debugf("Movie frame budget: %v, reference source: %v", budget, refSource)

	refFrames, err := svcs.Frames.GetFrameRange(refSource, startTime, endTime, 0)
	if err != nil {
		return frameselect.Selection{}, err
	}
	refTimestamps := make([]time.Time, 0, len(refFrames))
	for _, f := range refFrames {
		refTimestamps = append(refTimestamps, f.Timestamp)
	}

	return frameselect.SelectFrames(refTimestamps, frameselect.Request{
		Start:      startTime,
		End:        endTime,
		CadenceSec: cadenceSec,
		MaxFrames:  maxFrames,
	}, refSource)
}

func queueMoviePost(params handlers.ApiHandlerParams) (interface{}, error) {
	body, err := io.ReadAll(params.Request.Body)
	if err != nil {
		return nil, err
	}

	var req movieParams
	err = json.Unmarshal(body, &req)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(err)
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("invalid startTime: " + req.StartTime))
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("invalid endTime: " + req.EndTime))
	}
	if !endTime.After(startTime) {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("endTime must be after startTime"))
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

	format := req.Format
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "jpg" {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("unsupported frame format: " + format))
	}
	if len(req.Size) > 0 {
		if _, _, ok := render.MovieSizeDimensions(req.Size); !ok {
			return nil, errorwithstatus.MakeBadRequestError(errors.New("unknown movie size: " + req.Size))
		}
	}

	maxFrames := req.MaxFrames
	if maxFrames <= 0 || maxFrames > int(params.Svcs.Config.MaxMovieFrames) {
		maxFrames = int(params.Svcs.Config.MaxMovieFrames)
	}

	sel, err := selectMovieTimestamps(params.Svcs, layerList, startTime, endTime, req.CadenceSec, maxFrames)
	if err != nil {
		return nil, err
	}

	tsStrings := make([]string, 0, len(sel.Timestamps))
	for _, ts := range sel.Timestamps {
		tsStrings = append(tsStrings, ts.UTC().Format(time.RFC3339))
	}

	movieId := params.Svcs.IDGen.GenObjectID()

	jobStatus, err := job.AddJob(
		"mv",
		movieId,
		int32(len(tsStrings)),
		uint32(params.Svcs.Config.MovieJobMaxTimeSec),
		params.Svcs.DB,
		params.Svcs.IDGen,
		params.Svcs.TimeStamper,
		params.Svcs.Log,
		makeMovieJobUpdateHandler(movieId, params.Svcs))
	if err != nil {
		return nil, err
	}

	rec := movieRecord{
		Id:                 movieId,
		JobId:              jobStatus.JobId,
		CreatedUnixTimeSec: params.Svcs.TimeStamper.GetTimeNowSec(),
		Timestamps:         tsStrings,
		Params:             req,
	}
	_, err = params.Svcs.DB.Collection(dbCollections.MoviesName).InsertOne(context.TODO(), rec)
	if err != nil {
		return nil, err
	}

	cfg := params.Svcs.Config
	nodeCfg := jobrunner.FrameJob{
		JobId:           jobStatus.JobId,
		MovieId:         movieId,
		Timestamps:      tsStrings,
		Layers:          req.Layers,
		EventsState:     req.Events,
		RoiLeft:         roi.Left,
		RoiTop:          roi.Top,
		RoiRight:        roi.Right,
		RoiBottom:       roi.Bottom,
		Scale:           roi.Scale,
		OutputBucket:    cfg.OutputBucket,
		MasksBucket:     cfg.MasksBucket,
		OutputFormat:    format,
		CodecPath:       cfg.CodecPath,
		ScratchDir:      cfg.ScratchDir,
		CodecTimeoutSec: uint(cfg.CodecTimeoutSec),
		EnvironmentName: cfg.EnvironmentName,
		MongoSecret:     cfg.MongoSecret,
		Watermark:       req.Watermark,
		EventLabels:     req.EventLabels,
		ScaleIndicator:  req.Scale,
		MovieSize:       req.Size,
		FollowViewport:  req.FollowViewport,
	}

	groupCfg := jobstarter.JobGroupConfig{
		JobGroupId:  jobStatus.JobId,
		DockerImage: cfg.FrameWorkerImage,
		NodeCount:   len(tsStrings),
		NodeConfig:  nodeCfg,
	}

	starter, err := jobstarter.GetJobStarter(cfg.MovieExecutor)
	if err != nil {
		return nil, err
	}

	// Dispatch the workers. StartJob blocks until every worker has exited, so
	// this runs off in its own goroutine and the caller polls getMovieStatus
	go dispatchMovieJob(starter, groupCfg, params.Svcs)

	return movieQueuedResponse{
		JobId:      jobStatus.JobId,
		MovieId:    movieId,
		FrameCount: len(tsStrings),
		CadenceSec: sel.CadenceSec,
		Advisory:   sel.Advisory,
	}, nil
}

func dispatchMovieJob(starter jobstarter.JobStarter, groupCfg jobstarter.JobGroupConfig, svcs *services.APIServices) {
	err := starter.StartJob(groupCfg.DockerImage, groupCfg, svcs.Config, svcs.Log)
	if err != nil {
		svcs.Log.Errorf("Movie job %v dispatch failed: %v", groupCfg.JobGroupId, err)
		job.CompleteJob(groupCfg.JobGroupId, false, fmt.Sprintf("Failed to start frame workers: %v", err), "", svcs.DB, svcs.TimeStamper, svcs.Log)
	}
}

// makeMovieJobUpdateHandler - the watcher calls this on every job status
// change. Once all frames have reported in we decide the movie's fate: a few
// dropped frames shorten the movie, too many fail it.
func makeMovieJobUpdateHandler(movieId string, svcs *services.APIServices) func(*job.Status) {
	return func(status *job.Status) {
		svcs.Log.Infof("Movie %v job %v: %v, %v of %v frames done, %v failed",
			movieId, status.JobId, status.Status, status.FramesComplete, status.FramesTotal, status.FramesFailed)

		if status.Status == job.StatusComplete || status.Status == job.StatusError {
			return
		}

		if status.FramesComplete+status.FramesFailed >= status.FramesTotal {
			if status.FramesFailed > svcs.Config.MaxFrameFailures {
				msg := fmt.Sprintf("Movie failed: %v of %v frames could not be rendered", status.FramesFailed, status.FramesTotal)
				job.CompleteJob(status.JobId, false, msg, "", svcs.DB, svcs.TimeStamper, svcs.Log)
				return
			}

			// Every frame is in the output bucket now. Assembly pulls them
			// down and encodes the video, which can take a while, so it runs
			// off-thread and decides the job's fate itself
			go assembleAndCompleteMovie(movieId, status, svcs)
		}
	}
}

// assembleAndCompleteMovie - encodes the rendered frames into the final
// video, uploads it, then closes out the job
func assembleAndCompleteMovie(movieId string, status *job.Status, svcs *services.APIServices) {
	format := "png"
	if svcs.DB != nil {
		rec := movieRecord{}
		err := svcs.DB.Collection(dbCollections.MoviesName).FindOne(context.TODO(), bson.M{"_id": movieId}).Decode(&rec)
		if err != nil {
			svcs.Log.Errorf("Failed to read movie record %v: %v", movieId, err)
		} else if rec.Params.Format != "" {
			format = rec.Params.Format
		}
	}

	err := assembleMovie(movieId, format, int(status.FramesTotal), svcs)
	if err != nil {
		svcs.Log.Errorf("Movie %v assembly failed: %v", movieId, err)
		job.CompleteJob(status.JobId, false, fmt.Sprintf("Movie assembly failed: %v", err), "", svcs.DB, svcs.TimeStamper, svcs.Log)
		return
	}

	msg := fmt.Sprintf("Rendered %v frames", status.FramesComplete)
	if status.FramesFailed > 0 {
		msg += fmt.Sprintf(" (%v dropped)", status.FramesFailed)
	}
	job.CompleteJob(status.JobId, true, msg, movieStoragePath(movieId), svcs.DB, svcs.TimeStamper, svcs.Log)
}

// assembleMovie - downloads the uploaded frames to scratch, renumbers the
// survivors gap-free (failed frames were never uploaded), runs the encoder
// and stores the result at the movie's download path
func assembleMovie(movieId string, format string, frameCount int, svcs *services.APIServices) error {
	cfg := svcs.Config

	dir, err := os.MkdirTemp(cfg.ScratchDir, "movie_"+movieId+"_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	written := 0
	for i := 0; i < frameCount; i++ {
		data, err := svcs.FS.ReadObject(cfg.OutputBucket, jobrunner.FrameUploadPath(movieId, i, format))
		if err != nil {
			if svcs.FS.IsNotFoundError(err) {
				continue
			}
			return err
		}

		localName := fmt.Sprintf("frame_%05d.%v", written, format)
		if err := os.WriteFile(filepath.Join(dir, localName), data, 0600); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		return fmt.Errorf("no rendered frames found for movie %v", movieId)
	}

	outPath := filepath.Join(dir, movieId+".mp4")
	err = svcs.Encoder.EncodeMovie(dir, "frame_%05d."+format, movieFrameRate, outPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return err
	}
	return svcs.FS.WriteObject(cfg.OutputBucket, movieStoragePath(movieId), data)
}

func getMovieStatus(params handlers.ApiHandlerParams) (interface{}, error) {
	id := params.PathParams[movieIdentifier]
	if len(id) <= 0 {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("no job id supplied"))
	}

	status, err := job.GetJobStatus(id, params.Svcs.DB)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errorwithstatus.MakeNotFoundError(id)
		}
		return nil, err
	}

	return status, nil
}

func movieDownload(params handlers.ApiHandlerStreamParams) (string, string, string, error) {
	id := params.PathParams[movieIdentifier]
	if len(id) <= 0 {
		return "", "", "", errorwithstatus.MakeBadRequestError(errors.New("no movie id supplied"))
	}

	return params.Svcs.Config.OutputBucket, movieStoragePath(id), id + ".mp4", nil
}
