package database

import "errors"

// ErrNotReady is returned by Ping before the startup ping succeeds or after shutdown.
var ErrNotReady = errors.New("database not ready")
