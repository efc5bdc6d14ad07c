// SPDX-License-Identifier: MIT
//
// Package transport delivers published graph frames to external sinks.
package transport

// Transport defines a generic interface for sending published frames.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}
