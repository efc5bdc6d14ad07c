// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"dspview/internal/dsp"
	"dspview/internal/graph"
	applog "dspview/internal/log"
	"dspview/internal/transport"
)

// PacketSender writes one datagram per call.
type PacketSender interface {
	Send(data []byte) error
	Close() error
}

// Publisher keeps the most recent frame handed to Send and, while started,
// transmits one packet per graph of that frame on every tick.
type Publisher struct {
	sender   PacketSender
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	frameMu sync.Mutex
	latest  *graph.Frame

	sendMu       sync.Mutex // Serializes Flush between the ticker and callers.
	sequenceNum  uint32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a publisher writing through sender. An interval
// <= 0 defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender PacketSender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: UDP sender cannot be nil", dsp.ErrInvalidArgument)
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send replaces the frame published on the next tick. Only graph.Frame
// values are accepted.
func (p *Publisher) Send(data any) error {
	frame, ok := data.(graph.Frame)
	if !ok {
		return fmt.Errorf("%w: UDP publisher cannot send %T", dsp.ErrInvalidArgument, data)
	}
	p.frameMu.Lock()
	p.latest = &frame
	p.frameMu.Unlock()
	return nil
}

// Start begins the periodic publishing process. Calling Start while
// running is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.Flush()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it.
// It is safe to call Stop multiple times.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Publisher goroutine finished.")
	return nil
}

// Flush sends the latest frame immediately, one packet per graph. It
// returns the number of packets sent.
func (p *Publisher) Flush() int {
	p.frameMu.Lock()
	frame := p.latest
	p.frameMu.Unlock()
	if frame == nil {
		return 0
	}

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	sent := 0
	for _, g := range frame.Graphs {
		p.sequenceNum++
		p.packetBuffer.Reset()
		if err := EncodePacket(p.packetBuffer, p.sequenceNum, time.Now().UnixNano(), g); err != nil {
			applog.Errorf("UDPPublisher: Error packing graph %q: %v", g.Title, err)
			continue
		}
		if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
			continue
		}
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuffer.Len())
		sent++
	}
	return sent
}

// Close stops the publisher and closes its sender.
func (p *Publisher) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	return p.sender.Close()
}

var _ transport.Transport = (*Publisher)(nil)
