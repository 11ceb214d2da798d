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

package eventprovider

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/solarview/core/api/dbCollections"
	"github.com/solarview/core/core/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// eventRecord - the two provider schema variants flattened into one document
// shape at ingest time. Fields not every provider sends stay in the fields
// sub-document.
type eventRecord struct {
	ID        string            `bson:"_id"`
	ArchivID  string            `bson:"kb_archivid"` // variant-2 id, used if _id empty
	EventType string            `bson:"event_type"`
	FrmName   string            `bson:"frm_name"`
	Concept   string            `bson:"concept"`
	Source    string            `bson:"source"`
	StartTime time.Time         `bson:"event_starttime"`
	EndTime   time.Time         `bson:"event_endtime"`
	PeakTime  time.Time         `bson:"event_peaktime,omitempty"`
	HPCX      float64           `bson:"hpc_x"`
	HPCY      float64           `bson:"hpc_y"`
	Polygon   [][]float64       `bson:"hpc_boundcc,omitempty"`
	Fields    map[string]string `bson:"fields,omitempty"`
}

func (r *eventRecord) toEvent() events.Event {
	id := r.ID
	if id == "" {
		id = r.ArchivID
	}

	ev := events.Event{
		ID:        id,
		EventType: r.EventType,
		FrmName:   r.FrmName,
		Concept:   r.Concept,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		PeakTime:  r.PeakTime,
		HPCX:      r.HPCX,
		HPCY:      r.HPCY,
		Fields:    r.Fields,
	}
	if ev.Fields == nil {
		ev.Fields = map[string]string{}
	}

	for _, vertex := range r.Polygon {
		if len(vertex) >= 2 {
			ev.Polygon = append(ev.Polygon, events.Point{X: vertex[0], Y: vertex[1]})
		}
	}

	return ev
}

// MongoEventProvider - event records backed by the events collection
type MongoEventProvider struct {
	db *mongo.Database
}

func MakeMongoEventProvider(db *mongo.Database) *MongoEventProvider {
	return &MongoEventProvider{db: db}
}

func (p *MongoEventProvider) query(timestamp time.Time, sources []string) (bson.M, error) {
	filter := bson.M{
		"event_starttime": bson.M{"$lte": timestamp},
		"event_endtime":   bson.M{"$gte": timestamp},
	}
	if len(sources) > 0 {
		filter["source"] = bson.M{"$in": sources}
	}
	return filter, nil
}

func (p *MongoEventProvider) GetEventsForObservation(timestamp time.Time, sources []string) ([]events.Event, error) {
	ctx := context.TODO()

	filter, err := p.query(timestamp, sources)
	if err != nil {
		return nil, err
	}

	opt := options.Find().SetSort(bson.D{{Key: "event_starttime", Value: 1}})
	cursor, err := p.db.Collection(dbCollections.EventsName).Find(ctx, filter, opt)
	if err != nil {
		return nil, errors.Wrap(err, "event query failed")
	}

	records := []eventRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "event decode failed")
	}

	result := make([]events.Event, 0, len(records))
	for i := range records {
		result = append(result, records[i].toEvent())
	}
	return result, nil
}

func (p *MongoEventProvider) GetFRMs(timestamp time.Time, sources []string) (map[string][]string, []string, error) {
	evs, err := p.GetEventsForObservation(timestamp, sources)
	if err != nil {
		return nil, nil, err
	}

	frmsByLabel := map[string][]string{}
	labelOrder := []string{}

	for _, ev := range evs {
		label := ev.Concept + "/" + ev.EventType

		frms, seen := frmsByLabel[label]
		if !seen {
			labelOrder = append(labelOrder, label)
		}

		found := false
		for _, existing := range frms {
			if existing == ev.FrmName {
				found = true
				break
			}
		}
		if !found {
			frmsByLabel[label] = append(frms, ev.FrmName)
		}
	}

	return frmsByLabel, labelOrder, nil
}
