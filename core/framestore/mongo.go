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

package framestore

import (
	"context"

	"time"

	"github.com/pkg/errors"
	"github.com/solarview/core/api/dbCollections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFrameStore - image index backed by the frames collection
type MongoFrameStore struct {
	db *mongo.Database
}

func MakeMongoFrameStore(db *mongo.Database) *MongoFrameStore {
	return &MongoFrameStore{db: db}
}

func (s *MongoFrameStore) coll() *mongo.Collection {
	return s.db.Collection(dbCollections.FramesName)
}

// GetFrame - nearest frame in time: one query each side of the timestamp,
// then pick the closer of the two
func (s *MongoFrameStore) GetFrame(sourceId int, timestamp time.Time) (*Frame, error) {
	ctx := context.TODO()

	var before, after *Frame

	beforeOpt := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	result := s.coll().FindOne(ctx, bson.M{
		"sourceId":  sourceId,
		"timestamp": bson.M{"$lte": timestamp},
	}, beforeOpt)

	var f Frame
	err := result.Decode(&f)
	if err == nil {
		frameCopy := f
		before = &frameCopy
	} else if err != mongo.ErrNoDocuments {
		return nil, errors.Wrap(err, "frame lookup failed")
	}

	afterOpt := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	result = s.coll().FindOne(ctx, bson.M{
		"sourceId":  sourceId,
		"timestamp": bson.M{"$gt": timestamp},
	}, afterOpt)

	var g Frame
	err = result.Decode(&g)
	if err == nil {
		frameCopy := g
		after = &frameCopy
	} else if err != mongo.ErrNoDocuments {
		return nil, errors.Wrap(err, "frame lookup failed")
	}

	if before == nil && after == nil {
		return nil, mongo.ErrNoDocuments
	}
	if before == nil {
		return after, nil
	}
	if after == nil {
		return before, nil
	}

	if timestamp.Sub(before.Timestamp) <= after.Timestamp.Sub(timestamp) {
		return before, nil
	}
	return after, nil
}

func (s *MongoFrameStore) GetFrameCount(sourceId int, start time.Time, end time.Time) (int, error) {
	count, err := s.coll().CountDocuments(context.TODO(), bson.M{
		"sourceId":  sourceId,
		"timestamp": bson.M{"$gte": start, "$lte": end},
	})
	if err != nil {
		return 0, errors.Wrap(err, "frame count failed")
	}
	return int(count), nil
}

func (s *MongoFrameStore) GetFrameRange(sourceId int, start time.Time, end time.Time, limit int) ([]Frame, error) {
	ctx := context.TODO()

	opt := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opt = opt.SetLimit(int64(limit))
	}

	cursor, err := s.coll().Find(ctx, bson.M{
		"sourceId":  sourceId,
		"timestamp": bson.M{"$gte": start, "$lte": end},
	}, opt)
	if err != nil {
		return nil, errors.Wrap(err, "frame range query failed")
	}

	result := []Frame{}
	if err = cursor.All(ctx, &result); err != nil {
		return nil, errors.Wrap(err, "frame range decode failed")
	}

	return result, nil
}
