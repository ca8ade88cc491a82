package core

import (
	"errors"
)

// configuration errors: logged, the operation is aborted and prior state kept
var (
	ErrTargetMismatch    = errors.New("render targets differ in width, height or format")
	ErrInvalidResolution = errors.New("resolution out of range")
	ErrInvalidHandle     = errors.New("invalid window handle")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// not-ready resources: callers take an early-return path
var (
	ErrNotInitialized = errors.New("object is not initialized")
	ErrShaderNotReady = errors.New("shader is not built")
)

// fatal setup failures
var (
	ErrInvalidDevice = errors.New("invalid graphics device")
	ErrUnknown       = errors.New("unknown")
)
