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

package errorwithstatus

import (
	"fmt"
	"net/http"
)

// Error - a handler/pipeline error carrying an HTTP status and the numeric
// error code the legacy API exposed. Clients key retry/display behaviour off
// the numeric code, so it is preserved verbatim.
type Error interface {
	error
	Status() int
	LegacyCode() int
}

// Legacy numeric codes. These are wire-visible and must not be renumbered.
const (
	CodeGeneral            = 1
	CodeInvalidRegion      = 12
	CodeNoFramesAvailable  = 16
	CodeLayerBuildFailure  = 17
	CodeMalformedSelection = 22
	CodeExtractionFailure  = 31
)

// StatusError - an error with an associated HTTP status code and legacy code
type StatusError struct {
	Code   int
	Legacy int
	Err    error
}

func (se StatusError) Error() string {
	return se.Err.Error()
}

// Status - the HTTP status code to respond with
func (se StatusError) Status() int {
	return se.Code
}

// LegacyCode - the numeric code included in the JSON error body
func (se StatusError) LegacyCode() int {
	if se.Legacy == 0 {
		return CodeGeneral
	}
	return se.Legacy
}

func MakeInvalidRegionError(detail string) StatusError {
	return StatusError{
		Code:   http.StatusBadRequest,
		Legacy: CodeInvalidRegion,
		Err:    fmt.Errorf("invalid region of interest: %v", detail),
	}
}

func MakeNoFramesError(sourceId int, start int64, end int64) StatusError {
	return StatusError{
		Code:   http.StatusNotFound,
		Legacy: CodeNoFramesAvailable,
		Err:    fmt.Errorf("no images available for source %v in range %v-%v", sourceId, start, end),
	}
}

func MakeLayerBuildError() StatusError {
	return StatusError{
		Code:   http.StatusInternalServerError,
		Legacy: CodeLayerBuildFailure,
		Err:    fmt.Errorf("unable to create layers needed for composite image"),
	}
}

func MakeMalformedSelectionError(raw string) StatusError {
	return StatusError{
		Code:   http.StatusBadRequest,
		Legacy: CodeMalformedSelection,
		Err:    fmt.Errorf("malformed selection: %v", raw),
	}
}

func MakeExtractionError(sourceFile string, wrapped error) StatusError {
	return StatusError{
		Code:   http.StatusInternalServerError,
		Legacy: CodeExtractionFailure,
		Err:    fmt.Errorf("frame extraction failed for %v: %v", sourceFile, wrapped),
	}
}

func MakeNotFoundError(ID string) StatusError {
	return StatusError{
		Code: http.StatusNotFound,
		Err:  fmt.Errorf("%v not found", ID),
	}
}

func MakeBadRequestError(err error) StatusError {
	return StatusError{
		Code: http.StatusBadRequest,
		Err:  err,
	}
}

func MakeStatusError(status int, err error) StatusError {
	return StatusError{
		Code: status,
		Err:  err,
	}
}
