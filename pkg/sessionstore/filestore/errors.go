package filestore

import "errors"

var (
	ErrInvalidSavePath = errors.New("filestore.invalid_save_path")
	ErrNotWritable     = errors.New("filestore.not_writable")
)
