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

// Region extraction from JP2 source files via the external codec binary.
// The codec is an out-of-process tool; we only shell out to it, never decode
// JPEG2000 ourselves.
package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/solarview/core/core/errorwithstatus"
	"github.com/solarview/core/core/logger"
	"github.com/solarview/core/core/region"
	"github.com/solarview/core/core/utils"
)

// Retry contract for the codec subprocess: transient failures (NFS hiccups,
// codec crashes on truncated files being written) get 3 attempts with a
// short fixed backoff before we fail the frame.
const (
	maxAttempts  = 3
	retryBackoff = 200 * time.Millisecond
)

// FrameExtractor - turns a region of a JP2 source file into a local raster
// file the renderer can read
type FrameExtractor interface {
	// Returns the path of the extracted file. Callers own cleanup of the
	// returned file.
	ExtractRegion(sourceFile string, roi region.RegionOfInterest, scaleFactor float64) (string, error)
}

// CodecExtractor - runs the external codec binary
type CodecExtractor struct {
	BinaryPath string
	ScratchDir string
	Timeout    time.Duration
	Log        logger.ILogger
}

func MakeCodecExtractor(binaryPath string, scratchDir string, timeoutSec uint, log logger.ILogger) *CodecExtractor {
	return &CodecExtractor{
		BinaryPath: binaryPath,
		ScratchDir: scratchDir,
		Timeout:    time.Duration(timeoutSec) * time.Second,
		Log:        log,
	}
}

func (e *CodecExtractor) ExtractRegion(sourceFile string, roi region.RegionOfInterest, scaleFactor float64) (string, error) {
	outPath := path.Join(e.ScratchDir, utils.RandStringBytesMaskImpr(12)+".png")

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = e.runCodec(sourceFile, outPath, roi, scaleFactor)
		if lastErr == nil {
			return outPath, nil
		}

		e.Log.Errorf("Frame extraction attempt %v/%v failed for %v: %v", attempt, maxAttempts, sourceFile, lastErr)

		// Don't leave partial output behind for the next attempt to trip on
		os.Remove(outPath)

		if attempt < maxAttempts {
			time.Sleep(retryBackoff)
		}
	}

	return "", errorwithstatus.MakeExtractionError(sourceFile, lastErr)
}

func (e *CodecExtractor) runCodec(sourceFile string, outPath string, roi region.RegionOfInterest, scaleFactor float64) error {
	args := []string{
		"-i", sourceFile,
		"-o", outPath,
		"-region", fmt.Sprintf("{%v,%v},{%v,%v}", roi.Top, roi.Left, roi.ArcsecHeight(), roi.ArcsecWidth()),
		"-reduce", fmt.Sprintf("%v", scaleFactor),
	}

	cmd := exec.Command(e.BinaryPath, args...)

	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "codec start failed")
	}
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "codec exited with error")
		}
	case <-time.After(e.Timeout):
		cmd.Process.Kill()
		<-done
		return fmt.Errorf("codec timed out after %v", e.Timeout)
	}

	// The codec can exit 0 but write nothing when the region is outside the
	// image, treat that as failure too
	info, err := os.Stat(outPath)
	if err != nil {
		return errors.Wrap(err, "codec produced no output")
	}
	if info.Size() == 0 {
		return fmt.Errorf("codec produced empty output")
	}

	return nil
}
