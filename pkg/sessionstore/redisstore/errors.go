package redisstore

import "errors"

var ErrInvalidConfig = errors.New("redisstore.invalid_config")
