package endpoints

import (
	"github.com/solarview/core/api/handlers"
	apiRouter "github.com/solarview/core/api/router"
	"github.com/solarview/core/core/logger"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Logger

const logLevelId = "logLevel"

func registerLoggerHandler(router *apiRouter.ApiObjectRouter) {
	const pathPrefix = "logger"

	// Adjusting and getting log level
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/level"), "GET", getLogLevel)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/level", logLevelId), "PUT", putLogLevel)
}

func getLogLevel(params handlers.ApiHandlerParams) (interface{}, error) {
	return logger.GetLogLevelName(params.Svcs.Log.GetLogLevel())
}

func putLogLevel(params handlers.ApiHandlerParams) (interface{}, error) {
	logLevelName := params.PathParams[logLevelId]

	logLevel, err := logger.GetLogLevel(logLevelName)
	if err != nil {
		return nil, err
	}

	// Also set it on the actual logger
	params.Svcs.Log.SetLogLevel(logLevel)

	// Not really an error, but we log in this level to ensure it always gets printed
	params.Svcs.Log.Errorf("Request changed log level to: %v", logLevelName)

	return nil, nil
}
