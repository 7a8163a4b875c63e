package pgstore

import "errors"

var (
	ErrTableRequired      = errors.New("pgstore.table_required")
	ErrConnectionRequired = errors.New("pgstore.connection_required")
	ErrSchemaMissing      = errors.New("pgstore.schema_missing")
)
