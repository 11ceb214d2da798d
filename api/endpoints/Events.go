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
	"errors"
	"strings"
	"time"

	"github.com/solarview/core/api/handlers"
	apiRouter "github.com/solarview/core/api/router"
	"github.com/solarview/core/core/errorwithstatus"
	"github.com/solarview/core/core/events"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Events: the normalised category tree covering an observation time, for
// clients to build their event selection UI from

const eventDateParam = "date"
const eventSourcesParam = "sources"

func registerEventsHandler(router *apiRouter.ApiObjectRouter) {
	router.AddJSONHandler(handlers.MakeEndpointPath("v2/events"), "GET", eventsGet)
}

func eventsGet(params handlers.ApiHandlerParams) (interface{}, error) {
	dateStr := params.PathParams[eventDateParam]
	if len(dateStr) <= 0 {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("no date supplied"))
	}

	obsTime, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("invalid date: " + dateStr))
	}

	sources := []string{}
	if raw := params.PathParams[eventSourcesParam]; len(raw) > 0 {
		sources = strings.Split(raw, ",")
	}

	frms, order, err := params.Svcs.Events.GetFRMs(obsTime, sources)
	if err != nil {
		return nil, err
	}

	evs, err := params.Svcs.Events.GetEventsForObservation(obsTime, sources)
	if err != nil {
		return nil, err
	}

	categories := events.NormalizeFRMs(frms, order)
	categories = events.Normalize(categories, evs, obsTime)

	return categories, nil
}
