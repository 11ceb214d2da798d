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

package job

import (
	"context"

	"github.com/solarview/core/api/dbCollections"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/timestamper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	StatusStarting = "STARTING"
	StatusRunning  = "RUNNING"
	StatusComplete = "COMPLETE"
	StatusError    = "ERROR"
)

// Status - one movie generation job as stored in the jobStatus collection.
// Frame workers update their counts here; the API reads it back for
// getMovieStatus and the watcher thread notices the change stream events.
type Status struct {
	JobId   string `bson:"_id" json:"jobId"`
	MovieId string `bson:"movieId" json:"movieId"`
	Status  string `bson:"status" json:"status"`
	Message string `bson:"message" json:"message"`

	FramesTotal    int32 `bson:"framesTotal" json:"framesTotal"`
	FramesComplete int32 `bson:"framesComplete" json:"framesComplete"`

	// Frames dropped due to single-frame build failures. A few of these
	// shorten the movie; past the configured limit the job is failed.
	FramesFailed int32 `bson:"framesFailed" json:"framesFailed"`

	StartUnixTimeSec      uint32 `bson:"startUnixTimeSec" json:"startUnixTimeSec"`
	LastUpdateUnixTimeSec uint32 `bson:"lastUpdateUnixTimeSec" json:"lastUpdateUnixTimeSec"`
	EndUnixTimeSec        uint32 `bson:"endUnixTimeSec" json:"endUnixTimeSec"`

	OutputFilePath string `bson:"outputFilePath" json:"outputFilePath"`
}

// Expected to be called from the thing running the job. This updates the DB
// status, which hopefully the go thread started by AddJob will notice and
// fire off an update
func UpdateJob(jobId string, status string, message string, framesComplete int32, framesFailed int32, db *mongo.Database, ts timestamper.ITimeStamper, logger logger.ILogger) error {
	ctx := context.TODO()
	coll := db.Collection(dbCollections.JobStatusName)

	filter := bson.D{{Key: "_id", Value: jobId}}
	opt := options.Replace()

	jobStatus := &Status{
		JobId:                 jobId,
		Status:                status,
		Message:               message,
		FramesComplete:        framesComplete,
		FramesFailed:          framesFailed,
		LastUpdateUnixTimeSec: uint32(ts.GetTimeNowSec()),
	}

	existingStatus, err := readJobStatus(jobId, coll)
	if err != nil {
		logger.Errorf("Failed to read existing job status when writing UpdateJob %v: %v", jobId, err)
	} else {
		jobStatus.MovieId = existingStatus.MovieId
		jobStatus.FramesTotal = existingStatus.FramesTotal
		jobStatus.StartUnixTimeSec = existingStatus.StartUnixTimeSec
		jobStatus.OutputFilePath = existingStatus.OutputFilePath
	}

	replaceResult, err := coll.ReplaceOne(ctx, filter, jobStatus, opt)
	if err != nil {
		logger.Errorf("UpdateJob %v: %v", jobId, err)
		return err
	}

	if replaceResult.MatchedCount != 1 && replaceResult.UpsertedCount != 1 {
		logger.Errorf("UpdateJob result had unexpected counts %+v id: %v", replaceResult, jobId)
	} else {
		logger.Infof("UpdateJob: %v with status %v, message: %v", jobId, status, message)
	}

	return nil
}

// Expected to be called from the thing running the job. This allows setting some output fields
func CompleteJob(jobId string, success bool, message string, outputFilePath string, db *mongo.Database, ts timestamper.ITimeStamper, logger logger.ILogger) error {
	status := StatusComplete
	if !success {
		status = StatusError
	}

	logger.Infof("Job: %v completed with status: %v, message: %v", jobId, status, message)

	now := uint32(ts.GetTimeNowSec())

	ctx := context.TODO()
	coll := db.Collection(dbCollections.JobStatusName)

	filter := bson.D{{Key: "_id", Value: jobId}}
	opt := options.Replace()

	jobStatus := &Status{
		JobId:                 jobId,
		Status:                status,
		Message:               message,
		LastUpdateUnixTimeSec: now,
		EndUnixTimeSec:        now,
		OutputFilePath:        outputFilePath,
	}

	existingStatus, err := readJobStatus(jobId, coll)
	if err != nil {
		logger.Errorf("Failed to read existing job status when writing CompleteJob %v: %v", jobId, err)
	} else {
		jobStatus.MovieId = existingStatus.MovieId
		jobStatus.FramesTotal = existingStatus.FramesTotal
		jobStatus.FramesComplete = existingStatus.FramesComplete
		jobStatus.FramesFailed = existingStatus.FramesFailed
		jobStatus.StartUnixTimeSec = existingStatus.StartUnixTimeSec
	}

	replaceResult, err := coll.ReplaceOne(ctx, filter, jobStatus, opt)
	if err != nil {
		logger.Errorf("CompleteJob %v: %v", jobId, err)
		return err
	}

	if replaceResult.MatchedCount != 1 && replaceResult.UpsertedCount != 1 {
		logger.Errorf("CompleteJob result had unexpected counts %+v id: %v", replaceResult, jobId)
	} else {
		logger.Infof("CompleteJob: %v with status %v, message: %v", jobId, status, message)
	}

	defer activeJobLock.Unlock()
	activeJobLock.Lock()

	// Only update the job status if we have an entry for this job
	// HINT: If we don't this code may be running in a frame worker and
	//       not a part of the API instance, so nothing in our memory space
	//       cares about the state of this job, we're just notifying out via
	//       the DB above!
	if _, ok := activeJobs[jobId]; ok {
		activeJobs[jobId] = false
	}
	return nil
}

// GetJobStatus - read back the stored status for one job
func GetJobStatus(jobId string, db *mongo.Database) (*Status, error) {
	return readJobStatus(jobId, db.Collection(dbCollections.JobStatusName))
}

// MarkFrameDone - called by frame workers as each frame finishes. Uses $inc
// so concurrent workers from separate processes don't clobber each other the
// way a read-modify-replace would.
func MarkFrameDone(jobId string, failed bool, db *mongo.Database, ts timestamper.ITimeStamper, logger logger.ILogger) error {
	counter := "framesComplete"
	if failed {
		counter = "framesFailed"
	}

	coll := db.Collection(dbCollections.JobStatusName)
	_, err := coll.UpdateOne(context.TODO(),
		bson.M{"_id": jobId},
		bson.M{
			"$inc": bson.M{counter: 1},
			"$set": bson.M{
				"status":                StatusRunning,
				"lastUpdateUnixTimeSec": uint32(ts.GetTimeNowSec()),
			},
		})
	if err != nil {
		logger.Errorf("MarkFrameDone %v: %v", jobId, err)
	}
	return err
}
