package auth

import "errors"

var (
	EmptyCodeErr     = errors.New("authorization code is required")
	EmptyTokenErr    = errors.New("access token is required")
	EmptyInstanceErr = errors.New("instance URL is required")
)
