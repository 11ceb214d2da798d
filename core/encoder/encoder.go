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

// Movie assembly via the external video encoder binary. Like the JP2 codec,
// the encoder is an out-of-process tool we only shell out to.
package encoder

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/solarview/core/core/logger"
)

// VideoEncoder - turns a directory of numbered frame rasters into a video
// file
type VideoEncoder interface {
	// framePattern is a printf-style file name pattern like "frame_%05d.png".
	// The frame files must be numbered gap-free from 0.
	EncodeMovie(frameDir string, framePattern string, frameRate int, outputPath string) error
}

// CodecEncoder - runs the external encoder binary (ffmpeg compatible
// arguments)
type CodecEncoder struct {
	BinaryPath string
	Timeout    time.Duration
	Log        logger.ILogger
}

func MakeCodecEncoder(binaryPath string, timeoutSec uint, log logger.ILogger) *CodecEncoder {
	return &CodecEncoder{
		BinaryPath: binaryPath,
		Timeout:    time.Duration(timeoutSec) * time.Second,
		Log:        log,
	}
}

func (e *CodecEncoder) EncodeMovie(frameDir string, framePattern string, frameRate int, outputPath string) error {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%v", frameRate),
		"-i", path.Join(frameDir, framePattern),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "faststart",
		outputPath,
	}

	cmd := exec.Command(e.BinaryPath, args...)

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "encoder start failed")
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "encoder exited with error")
		}
	case <-time.After(e.Timeout):
		cmd.Process.Kill()
		<-done
		return fmt.Errorf("encoder timed out after %v", e.Timeout)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return errors.Wrap(err, "encoder produced no output")
	}
	if info.Size() == 0 {
		return fmt.Errorf("encoder produced empty output")
	}

	return nil
}
