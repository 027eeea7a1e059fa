package sessions

import "errors"

var (
	NotFoundErr           = errors.New("session not found")
	MissingTokenErr       = errors.New("access token is required")
	MissingInstanceURLErr = errors.New("instance URL is required")
)
