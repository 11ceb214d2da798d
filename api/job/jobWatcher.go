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
	"errors"
	"fmt"
	"sync"

	"github.com/solarview/core/api/dbCollections"
	"github.com/solarview/core/core/idgen"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/timestamper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var activeJobs = map[string]bool{}
var activeJobLock = sync.Mutex{}

// Expected to be called by API to create the initial record of a job. It can
// then trigger it however it needs to (frame workers in docker or kubernetes)
// and this sticks around monitoring the DB entry for changes, calling the
// sendUpdate callback function on change. Returns the snapshot of the "added"
// job that was saved
func AddJob(
	idPrefix string,
	movieId string,
	framesTotal int32,
	jobTimeoutSec uint32,
	db *mongo.Database,
	idgen idgen.IDGenerator,
	ts timestamper.ITimeStamper,
	logger logger.ILogger,
	sendUpdate func(*Status)) (*Status, error) {
	// Generate a new job Id that this job will write to
	// which we also return to the caller, so they can track what happens
	// with this async task
	jobId := fmt.Sprintf("%v-%s", idPrefix, idgen.GenObjectID())
	now := uint32(ts.GetTimeNowSec())

	job := &Status{
		JobId:            jobId,
		MovieId:          movieId,
		Status:           StatusStarting,
		FramesTotal:      framesTotal,
		StartUnixTimeSec: now,
	}

	if _, ok := activeJobs[jobId]; ok {
		return job, errors.New("Job already exists: " + jobId)
	}

	watchUntilUnixSec := now + jobTimeoutSec

	// Add to DB
	ctx := context.TODO()
	coll := db.Collection(dbCollections.JobStatusName)
	result, err := coll.InsertOne(ctx, job, options.InsertOne())
	if err != nil {
		return job, err
	}

	if result.InsertedID != jobId {
		logger.Errorf("Inserted job %v doesn't match db id %v", jobId, result.InsertedID)
	}

	// We'll watch this one and send out updates
	activeJobs[jobId] = true

	// Start a thread to watch this job
	go watchJob(jobId, watchUntilUnixSec, db, logger, ts, sendUpdate)

	logger.Infof("AddJob: %v for movie: %v, %v frames", jobId, movieId, framesTotal)
	return job, nil
}

func watchJob(jobId string, watchUntilUnixSec uint32, db *mongo.Database, logger logger.ILogger, ts timestamper.ITimeStamper, sendUpdate func(*Status)) {
	logger.Infof(">> Start watching job: %v...", jobId)

	// NOTE: we subscribe for changes to the jobs collection in Mongo and if
	// we see a change for the job we're watching, we can send notifications
	// out. We only listen for a certain amount of time after which we assume
	// the job has timed out
	ctx := context.TODO()
	coll := db.Collection(dbCollections.JobStatusName)

	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		logger.Errorf("Failed to watch job status: %v, no notifications will be sent. Error: %v", jobId, err)
		return
	}

	for stream.Next(ctx) {
		// A status has changed! Check if it's ours and process it
		// otherwise check if we've timed out
		type ChangeStreamId struct {
			Id string `bson:"_id"`
		}
		type ChangeStreamItem struct {
			OperationType string         `bson:"operationType"`
			DocumentKey   ChangeStreamId `bson:"documentKey"`
			FullDocument  *Status        `bson:"fullDocument"`
		}

		item := ChangeStreamItem{}
		err = stream.Decode(&item)
		if err != nil {
			logger.Errorf("Failed to decode change stream for job status while watching for job: %v", jobId)
			continue
		}

		// Check if we're interested
		if item.FullDocument != nil && item.DocumentKey.Id == jobId {
			// Send an update
			sendUpdate(item.FullDocument)

			// If job has completed, stop here
			if item.FullDocument.Status == StatusComplete || item.FullDocument.Status == StatusError {
				break
			}
		} else {
			// Not one of ours, but check if we've timed out
			now := ts.GetTimeNowSec()
			if now > int64(watchUntilUnixSec) {
				// We've timed out
				sendUpdate(&Status{
					JobId:          jobId,
					Status:         StatusError,
					Message:        "Timed out while waiting for status update",
					EndUnixTimeSec: uint32(ts.GetTimeNowSec()),
				})

				break
			}
		}
	}

	defer activeJobLock.Unlock()
	activeJobLock.Lock()
	activeJobs[jobId] = false
	logger.Infof(">> Finish watching job: %v...", jobId)
}

func readJobStatus(jobId string, coll *mongo.Collection) (*Status, error) {
	dbStatusResult := coll.FindOne(context.TODO(), bson.M{"_id": jobId})
	if dbStatusResult.Err() != nil {
		return nil, dbStatusResult.Err()
	}

	dbStatus := &Status{}
	err := dbStatusResult.Decode(&dbStatus)
	return dbStatus, err
}
