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

package jobstarter

import (
	"sync"

	"github.com/solarview/core/api/config"
	jobrunner "github.com/solarview/core/api/job/runner"
	"github.com/solarview/core/core/logger"
)

///////////////////////////////////////////////////////////////////////////////////////////
// nullJobStarter for testing and local development. Instead of dispatching
// containers it runs the frame workers in-process, one goroutine per frame.

type nullJobStarter struct {
}

func (r *nullJobStarter) StartJob(dockerImage string, jobConfig JobGroupConfig, apiConfig config.APIConfig, log logger.ILogger) error {
	var wg sync.WaitGroup

	for nodeIdx := 0; nodeIdx < jobConfig.NodeCount; nodeIdx++ {
		wg.Add(1)
		go runNullJob(&wg, jobConfig.GetNodeConfig(nodeIdx), log)
	}

	// Wait for all frame workers to finish
	wg.Wait()

	return nil
}

// This is currently very dumb, it runs every frame worker concurrently with no
// cap, which is fine for the small frame counts used in local testing.
func runNullJob(wg *sync.WaitGroup, frameConfig jobrunner.FrameJob, log logger.ILogger) {
	defer wg.Done()

	log.Infof("Rendering frame %v of movie %v in-process...", frameConfig.FrameIndex, frameConfig.MovieId)

	if err := jobrunner.RunFrameJob(frameConfig, log); err != nil {
		log.Errorf("Frame %v of movie %v failed: %v", frameConfig.FrameIndex, frameConfig.MovieId, err)
	}
}
