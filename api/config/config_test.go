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

package config

import (
	"testing"
)

func Test_buildConfig(t *testing.T) {
	cfg, err := buildConfig([]byte(`{
		"EnvironmentName": "dev",
		"OutputBucket": "solarview-output-dev",
		"MasksBucket": "solarview-masks-dev",
		"CodecPath": "/usr/local/bin/jp2codec",
		"MaxMovieFrames": 300
	}`))

	if err != nil {
		t.Fatalf("%v", err)
	}
	if cfg.EnvironmentName != "dev" {
		t.Errorf("EnvironmentName=%v", cfg.EnvironmentName)
	}
	if cfg.OutputBucket != "solarview-output-dev" {
		t.Errorf("OutputBucket=%v", cfg.OutputBucket)
	}
	if cfg.MaxMovieFrames != 300 {
		t.Errorf("MaxMovieFrames=%v", cfg.MaxMovieFrames)
	}
}

func Test_buildConfig_EnvOverride(t *testing.T) {
	t.Setenv("SOLARVIEW_CONFIG_EnvironmentName", "prod")
	t.Setenv("SOLARVIEW_CONFIG_MaxMovieFrames", "500")

	cfg, err := buildConfig([]byte(`{"EnvironmentName": "dev", "MaxMovieFrames": 300}`))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if cfg.EnvironmentName != "prod" {
		t.Errorf("env override didn't apply, EnvironmentName=%v", cfg.EnvironmentName)
	}
	if cfg.MaxMovieFrames != 500 {
		t.Errorf("int env override didn't apply, MaxMovieFrames=%v", cfg.MaxMovieFrames)
	}
}

func Test_buildConfig_BadJSON(t *testing.T) {
	_, err := buildConfig([]byte(`{not json`))
	if err == nil {
		t.Errorf("expected parse error")
	}
}

func Test_applyDefaults(t *testing.T) {
	cfg := APIConfig{}
	applyDefaults(&cfg)

	if cfg.CodecTimeoutSec != 30 {
		t.Errorf("CodecTimeoutSec=%v", cfg.CodecTimeoutSec)
	}
	if cfg.MaxFrameFailures != 3 {
		t.Errorf("MaxFrameFailures=%v", cfg.MaxFrameFailures)
	}
	if cfg.MovieExecutor != "null" {
		t.Errorf("MovieExecutor=%v", cfg.MovieExecutor)
	}
}
