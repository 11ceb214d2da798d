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

package apiRouter

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/solarview/core/api/handlers"
	"github.com/solarview/core/api/services"
)

type ApiObjectRouter struct {
	// Registered method+path combos, so duplicates get caught at startup
	Routes map[string]bool

	Svcs   *services.APIServices
	Router *mux.Router
}

func NewAPIRouter(svcs *services.APIServices, router *mux.Router) ApiObjectRouter {
	return ApiObjectRouter{map[string]bool{}, svcs, router}
}

func (r *ApiObjectRouter) AddGenericHandler(path string, method string, handleFunc handlers.ApiHandlerGenericFunc) {
	r.addHandler(path, method, &handlers.ApiHandlerGeneric{APIServices: r.Svcs, Handler: handleFunc})
}

func (r *ApiObjectRouter) AddJSONHandler(path string, method string, handleFunc handlers.ApiHandlerFunc) {
	r.addHandler(path, method, &handlers.ApiHandlerJSON{APIServices: r.Svcs, Handler: handleFunc})
}

func (r *ApiObjectRouter) AddStreamHandler(path string, method string, handleFunc handlers.ApiStreamHandlerFunc) {
	r.addHandler(path, method, &handlers.ApiStreamHandler{APIServices: r.Svcs, Stream: handleFunc})
}

func (r *ApiObjectRouter) addHandler(path string, method string, handler http.Handler) {
	handlerToSave := handler

	// If needed, wrap in a sentry handler
	if r.Svcs.Config.EnvironmentName != "unit-test" && r.Svcs.Config.EnvironmentName != "local" {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
		})

		handlerToSave = sentryHandler.Handle(handler)
	}

	methodRoute := method + path
	if r.Routes[methodRoute] {
		r.Svcs.Log.Errorf("Path handler already defined for: %v, method: %v", path, method)
		return
	}
	r.Routes[methodRoute] = true

	r.Router.Handle(path, handlerToSave).Methods(method)
}
