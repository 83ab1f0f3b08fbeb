// Package providers contains dependency injection providers for the binder engine.
package providers

import "time"

const (
	// startupTimeout bounds the connectivity checks run while providing a component.
	startupTimeout = 10 * time.Second
)
