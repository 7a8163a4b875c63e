package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo.connection_failed")
	ErrEmptyConnectionURL     = errors.New("mongo.empty_connection_url")
	ErrHealthcheckFailed      = errors.New("mongo.healthcheck_failed")
)
