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

// Lowest-level code to connect to the image-index/metadata Mongo DB, locally
// in docker or remotely with credentials held in AWS Secrets Manager.
package mongoconn

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/solarview/core/core/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func Connect(
	sess *session.Session, // Can be nil for local connection
	mongoSecret string, // empty for local connection
	iLog logger.ILogger,
) (*mongo.Client, error) {
	// If the secret is blank, assume we're connecting to a local DB with no auth
	if len(mongoSecret) <= 0 {
		return connectLocal(iLog)
	}

	info, err := getConnectionInfoFromSecretCache(sess, mongoSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to read mongo secret \"%v\" from secrets cache: %v", mongoSecret, err)
	}

	return connectRemote(info.Host, info.Username, info.Password, iLog)
}

// GetDatabaseName - DB name is suffixed with the environment so dev/prod can
// share a cluster
func GetDatabaseName(dbName string, envName string) string {
	return dbName + "-" + envName
}

// Assumes local mongo running in docker, eg:
// docker run -d --name mongo-on-docker -p 27017:27017 mongo
func connectLocal(iLog logger.ILogger) (*mongo.Client, error) {
	iLog.Infof("Connecting to local mongo db...")

	mongoUri, set := os.LookupEnv("LOCAL_MONGO_URI")
	if !set {
		mongoUri = "mongodb://localhost"
	}

	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(mongoUri).SetDirect(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create local mongo DB connection: %v", err)
	}

	if err = ping(client); err != nil {
		return nil, err
	}

	iLog.Infof("Successfully connected to local mongo db!")
	return client, nil
}

func connectRemote(endpoint string, username string, password string, iLog logger.ILogger) (*mongo.Client, error) {
	iLog.Infof("Connecting to remote mongo db: %v, user: %v", endpoint, username)

	connectionURI := fmt.Sprintf("mongodb://%s/", endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx,
		options.Client().
			ApplyURI(connectionURI).
			SetRetryWrites(false).
			SetDirect(true).
			SetAuth(
				options.Credential{
					Username:    username,
					Password:    password,
					PasswordSet: true,
					AuthSource:  "admin",
				}))
	if err != nil {
		return nil, fmt.Errorf("failed to create remote mongo DB connection: %v", err)
	}

	if err = ping(client); err != nil {
		return nil, err
	}

	iLog.Infof("Successfully connected to remote mongo db!")
	return client, nil
}

func ping(client *mongo.Client) error {
	var result bson.M
	return client.Database("admin").RunCommand(context.TODO(), bson.D{{Key: "ping", Value: 1}}).Decode(&result)
}
