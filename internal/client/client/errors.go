package client

import "errors"

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// errNotModified marks a 304 response on a conditional document fetch.
// It never escapes the package: GetDocumentIfChanged turns it into a
// changed=false result.
var errNotModified = errors.New("not modified")
