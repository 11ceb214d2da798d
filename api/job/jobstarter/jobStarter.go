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

// Exposes interfaces and structures required to fan movie frame rendering out
// to worker containers, either locally in docker or in a Kubernetes cluster.
package jobstarter

import (
	"fmt"

	"github.com/solarview/core/api/config"
	jobrunner "github.com/solarview/core/api/job/runner"
	"github.com/solarview/core/core/logger"
)

type JobGroupConfig struct {
	JobGroupId  string
	DockerImage string
	NodeCount   int
	NodeConfig  jobrunner.FrameJob
}

func (jg JobGroupConfig) GetNodeConfig(nodeIdx int) jobrunner.FrameJob {
	nodeCfg := jg.NodeConfig.Copy()
	nodeCfg.FrameIndex = nodeIdx
	return nodeCfg
}

type JobStarter interface {
	StartJob(dockerImage string, jobConfig JobGroupConfig, apiConfig config.APIConfig, log logger.ILogger) error
}

func GetJobStarter(name string) (JobStarter, error) {
	if name == "docker" {
		return &dockerJobStarter{}, nil
	} else if name == "kubernetes" {
		return &kubernetesJobStarter{}, nil
	} else if name == "null" {
		return &nullJobStarter{}, nil
	}
	return nil, fmt.Errorf("Unknown job starter: %v", name)
}
