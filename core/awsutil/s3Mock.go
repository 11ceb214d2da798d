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

package awsutil

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// MockS3Client - mock S3 client for unit tests. Expected inputs are checked in
// order as calls come in, queued outputs are replayed. Call FinishTest() at
// the end (defer it) to verify all expected calls were made.
type MockS3Client struct {
	mutex sync.Mutex

	s3iface.S3API

	// Expected requests
	ExpGetObjectInput    []s3.GetObjectInput
	ExpPutObjectInput    []s3.PutObjectInput
	ExpHeadObjectInput   []s3.HeadObjectInput
	ExpDeleteObjectInput []s3.DeleteObjectInput

	// Responses replayed as each request comes in
	QueuedGetObjectOutput    []*s3.GetObjectOutput
	QueuedPutObjectOutput    []*s3.PutObjectOutput
	QueuedHeadObjectOutput   []*s3.HeadObjectOutput
	QueuedDeleteObjectOutput []*s3.DeleteObjectOutput
}

func (m *MockS3Client) FinishTest() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var err error
	if len(m.ExpGetObjectInput) > 0 {
		err = errors.New("test expected more GetObject calls")
	} else if len(m.ExpPutObjectInput) > 0 {
		err = errors.New("test expected more PutObject calls")
	} else if len(m.QueuedGetObjectOutput) > 0 {
		err = errors.New("remaining queued GetObject outputs")
	} else if len(m.QueuedPutObjectOutput) > 0 {
		err = errors.New("remaining queued PutObject outputs")
	}

	// Print too, so example tests catch it in their expected output
	if err != nil {
		fmt.Println(err)
	}

	return err
}

func (m *MockS3Client) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.ExpGetObjectInput) <= 0 {
		return nil, fmt.Errorf("unexpected GetObject call: %v", input.String())
	}
	exp := m.ExpGetObjectInput[0]
	m.ExpGetObjectInput = m.ExpGetObjectInput[1:]

	if exp.String() != input.String() {
		return nil, fmt.Errorf("GetObject expected %v, got %v", exp.String(), input.String())
	}

	result := m.QueuedGetObjectOutput[0]
	m.QueuedGetObjectOutput = m.QueuedGetObjectOutput[1:]

	if result == nil {
		return nil, errors.New(s3.ErrCodeNoSuchKey)
	}
	return result, nil
}

func (m *MockS3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.ExpPutObjectInput) <= 0 {
		return nil, fmt.Errorf("unexpected PutObject call: key %v", *input.Key)
	}
	exp := m.ExpPutObjectInput[0]
	m.ExpPutObjectInput = m.ExpPutObjectInput[1:]

	if *exp.Bucket != *input.Bucket || *exp.Key != *input.Key {
		return nil, fmt.Errorf("PutObject expected %v/%v, got %v/%v", *exp.Bucket, *exp.Key, *input.Bucket, *input.Key)
	}

	result := m.QueuedPutObjectOutput[0]
	m.QueuedPutObjectOutput = m.QueuedPutObjectOutput[1:]
	return result, nil
}

func (m *MockS3Client) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.ExpHeadObjectInput) <= 0 {
		return nil, fmt.Errorf("unexpected HeadObject call: %v", input.String())
	}
	m.ExpHeadObjectInput = m.ExpHeadObjectInput[1:]

	result := m.QueuedHeadObjectOutput[0]
	m.QueuedHeadObjectOutput = m.QueuedHeadObjectOutput[1:]
	if result == nil {
		return nil, errors.New("NotFound")
	}
	return result, nil
}

func (m *MockS3Client) DeleteObject(input *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.ExpDeleteObjectInput) <= 0 {
		return nil, fmt.Errorf("unexpected DeleteObject call: %v", input.String())
	}
	m.ExpDeleteObjectInput = m.ExpDeleteObjectInput[1:]

	result := m.QueuedDeleteObjectOutput[0]
	m.QueuedDeleteObjectOutput = m.QueuedDeleteObjectOutput[1:]
	return result, nil
}
