package content

import "errors"

var (
	ErrNotFound      = errors.New("content not found")
	ErrUnavailable   = errors.New("content service unavailable")
	ErrEmptyDownload = errors.New("downloaded file is empty")
	ErrInvalidURL    = errors.New("invalid audio url")
)
