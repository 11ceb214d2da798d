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

package services

import (
	"log"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/getsentry/sentry-go"

	"github.com/solarview/core/api/config"
	"github.com/solarview/core/core/awsutil"
	"github.com/solarview/core/core/encoder"
	"github.com/solarview/core/core/eventprovider"
	"github.com/solarview/core/core/extractor"
	"github.com/solarview/core/core/fileaccess"
	"github.com/solarview/core/core/framestore"
	"github.com/solarview/core/core/idgen"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/mongoconn"
	"github.com/solarview/core/core/render"
	"github.com/solarview/core/core/timestamper"
)

// NOTE: these 2 vars are set during compilation in CI build (see Makefile)
var ApiVersion string
var GitHash string

// APIServices contains the interfaces HTTP handlers need. Instead of a bunch
// of global variables we pass this one object around, and unit tests swap any
// member for a mock.
type APIServices struct {
	// Configuration read in on startup
	Config config.APIConfig

	// Default logger
	Log logger.ILogger

	AWSSession *session.Session

	// Anything accessing files should use this
	FS fileaccess.FileAccess

	// ID generator
	IDGen idgen.IDGenerator

	// Timestamp retriever - so can be mocked for unit tests
	TimeStamper timestamper.ITimeStamper

	// Our mongo db connection
	Mongo *mongo.Client

	// Handle to our database, for anything not behind the store interfaces
	DB *mongo.Database

	// The image index
	Frames framestore.FrameStore

	// Feature/event records
	Events eventprovider.EventProvider

	// Region extraction codec
	Extractor extractor.FrameExtractor

	// Movie assembly encoder
	Encoder encoder.VideoEncoder

	// Configured compositing pipeline
	Renderer *render.CompositeRenderer
}

// InitAPIServices sets up a new APIServices instance with real collaborators
func InitAPIServices(cfg config.APIConfig) APIServices {
	sess, err := awsutil.GetSession()
	if err != nil {
		log.Fatalf("Failed to create AWS session. Error: %v", err)
	}

	s3svc, err := awsutil.GetS3(sess)
	if err != nil {
		log.Fatalf("Failed to create AWS S3 service. Error: %v", err)
	}

	fs := fileaccess.MakeS3Access(s3svc)

	// If we're local, we just output to stdout
	ourLogger := &logger.StdOutLogger{}
	ourLogger.SetLogLevel(cfg.LogLevel)

	if len(cfg.SentryEndpoint) > 0 {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryEndpoint,
			Environment: cfg.EnvironmentName,
			Release:     ApiVersion,
		}); err != nil {
			ourLogger.Errorf("Sentry initialization failed: %v", err)
		}
	}

	mongoClient, err := mongoconn.Connect(sess, cfg.MongoSecret, ourLogger)
	if err != nil {
		log.Fatalf("Failed to connect to mongo: %v", err)
	}

	db := mongoClient.Database(mongoconn.GetDatabaseName("solarview", cfg.EnvironmentName))

	frames := framestore.MakeMongoFrameStore(db)
	events := eventprovider.MakeMongoEventProvider(db)
	codec := extractor.MakeCodecExtractor(cfg.CodecPath, cfg.ScratchDir, uint(cfg.CodecTimeoutSec), ourLogger)
	videoEnc := encoder.MakeCodecEncoder(cfg.EncoderPath, uint(cfg.EncodeTimeoutSec), ourLogger)

	renderer := &render.CompositeRenderer{
		Frames:     frames,
		Events:     events,
		Extract:    codec,
		Masks:      fs,
		MaskBucket: cfg.MasksBucket,
		Log:        ourLogger,
	}

	return APIServices{
		Config:      cfg,
		Log:         ourLogger,
		AWSSession:  sess,
		FS:          fs,
		IDGen:       &idgen.IDGen{},
		TimeStamper: &timestamper.UnixTimeNowStamper{},
		Mongo:       mongoClient,
		DB:          db,
		Frames:      frames,
		Events:      events,
		Extractor:   codec,
		Encoder:     videoEnc,
		Renderer:    renderer,
	}
}
