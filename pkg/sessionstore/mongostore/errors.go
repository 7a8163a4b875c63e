package mongostore

import "errors"

var ErrInvalidConfig = errors.New("mongostore.invalid_config")
