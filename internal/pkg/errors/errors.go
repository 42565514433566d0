package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalid         = errors.New("invalid")
	ErrTooMany         = errors.New("too many requests")
	ErrInternal        = errors.New("internal")
	ErrDirectoryCreate = errors.New("cache directory create failed")
	ErrDownload        = errors.New("model download failed")
	ErrCacheCorrupted  = errors.New("model cache corrupted")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDirectoryCreate(err error) bool {
	return errors.Is(err, ErrDirectoryCreate)
}

func IsDownload(err error) bool {
	return errors.Is(err, ErrDownload)
}
