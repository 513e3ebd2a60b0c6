package config

import "errors"

// Sentinel errors returned by Load, LoadFile and Watch.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
	ErrWatchConfig   = errors.New("watch config failed")
)
