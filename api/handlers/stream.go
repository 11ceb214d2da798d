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

package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/solarview/core/api/services"
	"github.com/solarview/core/core/errorwithstatus"
)

// If it's a handler that streams a stored file to the client, use this.
// The handler func resolves the request to a bucket+path and a download
// file name; the read goes through the services FS abstraction so tests
// run against the in-memory implementation.
type ApiHandlerStreamParams struct {
	Svcs       *services.APIServices
	PathParams map[string]string
	Headers    http.Header
}
type ApiStreamHandlerFunc func(ApiHandlerStreamParams) (string, string, string, error)
type ApiStreamHandler struct {
	*services.APIServices
	Stream ApiStreamHandlerFunc
}

func (h ApiStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParams := makePathParams(h.APIServices, r)

	bucket, storagePath, name, err := h.Stream(ApiHandlerStreamParams{h.APIServices, pathParams, r.Header})

	var data []byte
	if err == nil {
		data, err = h.FS.ReadObject(bucket, storagePath)
		if err != nil && h.FS.IsNotFoundError(err) {
			err = errorwithstatus.MakeNotFoundError(name)
		}
	}

	if err != nil {
		logHandlerErrors(err, h.APIServices.Log, w, r)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%v", downloadCacheMaxAgeSec))
	w.Header().Set("Content-Length", fmt.Sprintf("%v", len(data)))

	w.Write(data)
}
