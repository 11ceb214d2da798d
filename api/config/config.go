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

// API configuration as read from strings/JSON and some constants defined here also
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/solarview/core/core/logger"
)

// APIConfig combines env vars and config JSON values
type APIConfig struct {
	EnvironmentName string

	LogLevel logger.LogLevel // Can be changed at runtime, but if API restarts, it goes back to configured value

	SentryEndpoint string

	// Mongo Connection, blank means local unauthenticated mongo
	MongoSecret string

	// Where pre-rendered event polygon masks live
	MasksBucket string

	// Where rendered screenshots and movie frames get written
	OutputBucket string

	// Frame extraction codec subprocess
	CodecPath       string
	ScratchDir      string
	CodecTimeoutSec int32

	// Movie assembly encoder subprocess
	EncoderPath      string
	EncodeTimeoutSec int32

	// Movie generation limits
	MaxMovieFrames   int32
	MaxFrameFailures int32 // frames silently dropped per movie before the job fails
	MaxOutputPixels  int32 // per axis, oversized requests get their scale coarsened

	// Frame worker dispatch: "null", "docker" or "kubernetes"
	MovieExecutor      string
	FrameWorkerImage   string
	MovieNamespace     string
	MovieJobMaxTimeSec uint32

	// "internal" when the API itself runs in the cluster, "external" to use a kubeconfig file
	KubernetesLocation string

	// Vars not set by environment
	KubeConfig string // Env sets this via command line parameter
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return os.Getenv("USERPROFILE") // windows
}

func NewConfigFromFile(configFilePath string) (APIConfig, error) {
	var cfg APIConfig

	fmt.Printf("Loading custom config from: %s\n", configFilePath)
	customConfig, err := os.ReadFile(configFilePath)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file at %s", configFilePath)
	}
	return buildConfig(customConfig)
}

func buildConfig(configJson []byte) (APIConfig, error) {
	var cfg APIConfig

	err := json.Unmarshal(configJson, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse custom config: %v", err)
	}

	// Override Config with any values explicitly set in Env Vars (SOLARVIEW_CONFIG_*)
	reflection := reflect.ValueOf(&cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)
		if val, present := os.LookupEnv(fmt.Sprintf("SOLARVIEW_CONFIG_%s", fieldName)); present {
			switch field.Kind() {
			case reflect.String:
				field.SetString(val)
			case reflect.Slice:
				if field.Type().Elem().Kind() == reflect.String {
					slicedVal := strings.Split(val, ",")
					field.Set(reflect.ValueOf(slicedVal))
				}
			case reflect.Int32:
				i, err := strconv.Atoi(val)
				if err != nil {
					fmt.Printf("Could not cast value SOLARVIEW_CONFIG_%s=%s to Int", fieldName, val)
					continue
				}
				field.SetInt(int64(i))
			case reflect.Uint32:
				i, err := strconv.Atoi(val)
				if err != nil {
					fmt.Printf("Could not cast value SOLARVIEW_CONFIG_%s=%s to Int", fieldName, val)
					continue
				}
				field.SetUint(uint64(i))
			}
		}
	}
	return cfg, nil
}

// Init config, loads config params
func Init() (APIConfig, error) {
	// Firstly, read command line arguments
	var kubeconfig *string
	if home := homeDir(); home != "" {
		kubeconfig = flag.String("kubeconfig", filepath.Join(home, ".kube", "config"), "(optional) absolute path to the kubeconfig file")
	} else {
		kubeconfig = flag.String("kubeconfig", "", "absolute path to the kubeconfig file")
	}
	configFilePath := flag.String("customConfigPath", "", "Path to the json file holding a set of custom config for the API")
	flag.Parse()

	var cfg APIConfig
	var err error

	if configFilePath != nil && *configFilePath != "" {
		cfg, err = NewConfigFromFile(*configFilePath)
	} else {
		err = errors.New("no configuration provided")
	}
	if err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	cfg.KubeConfig = *kubeconfig

	return cfg, nil
}

func applyDefaults(cfg *APIConfig) {
	if cfg.CodecTimeoutSec <= 0 {
		cfg.CodecTimeoutSec = 30
	}
	if cfg.EncoderPath == "" {
		cfg.EncoderPath = "ffmpeg"
	}
	if cfg.EncodeTimeoutSec <= 0 {
		cfg.EncodeTimeoutSec = 600
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	if cfg.MaxMovieFrames <= 0 {
		cfg.MaxMovieFrames = 300
	}
	if cfg.MaxFrameFailures <= 0 {
		cfg.MaxFrameFailures = 3
	}
	if cfg.MaxOutputPixels <= 0 {
		cfg.MaxOutputPixels = 4096
	}
	if cfg.MovieJobMaxTimeSec <= 0 {
		cfg.MovieJobMaxTimeSec = uint32(15 * 60)
	}
	if cfg.MovieExecutor == "" {
		cfg.MovieExecutor = "null"
	}
}
