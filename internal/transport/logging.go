// SPDX-License-Identifier: MIT
package transport

import (
	"dspview/internal/graph"
	applog "dspview/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each frame.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs one line per graph of a frame. Other values are logged by type.
func (lt *LoggingTransport) Send(data any) error {
	frame, ok := data.(graph.Frame)
	if !ok {
		applog.Infof("LOG_TRANSPORT: Received %T", data)
		return nil
	}
	for _, g := range frame.Graphs {
		applog.Infof("LOG_TRANSPORT: frame %d %-11s %-5s %d columns", frame.Seq, g.Title, g.Kind, g.Width())
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
