package connection

import "errors"

var (
	// ErrRedisNotReady is returned when the Redis transport cannot reach the
	// server during construction.
	ErrRedisNotReady = errors.New("connection: redis server is not ready")

	// ErrFailedToParseRedisConnString is returned for malformed Redis
	// connection URLs.
	ErrFailedToParseRedisConnString = errors.New("connection: failed to parse redis connection string")

	// ErrTransportClosed is returned when opening a transport that has been
	// shut down.
	ErrTransportClosed = errors.New("connection: transport is closed")
)
