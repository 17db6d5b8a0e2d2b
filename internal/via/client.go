package via

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seagrayinc/vialctl/internal/packet"
)

// Transport moves one 32-byte packet to the device and back. Implementations
// serialize access to the physical device; the client never issues
// overlapping requests on its own.
type Transport interface {
	// Exchange writes the packet and blocks for the 32-byte response.
	Exchange(ctx context.Context, p []byte) ([]byte, error)
	// Send writes the packet without waiting for a response.
	Send(ctx context.Context, p []byte) error
	// Open reports whether the physical device is still present.
	Open() bool
}

// Client issues VIA/Vial commands over a Transport.
type Client struct {
	tr Transport

	echoRetries int
	echoDelay   time.Duration
	log         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEchoRetries sets how many times an echoed command is retried before it
// is reported as unsupported.
func WithEchoRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.echoRetries = n
		}
	}
}

// WithEchoRetryDelay sets the delay between echo retry attempts.
func WithEchoRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.echoDelay = d
		}
	}
}

// WithLogger sets the logger used for packet-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient wraps a Transport.
func NewClient(tr Transport, opts ...Option) *Client {
	c := &Client{
		tr:          tr,
		echoRetries: 20,
		echoDelay:   500 * time.Millisecond,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DeviceOpen reports whether the underlying device is still present.
func (c *Client) DeviceOpen() bool {
	return c.tr.Open()
}

func (c *Client) exchange(ctx context.Context, req []byte) ([]byte, error) {
	c.log.Debug("exchange", slog.String("request", dumpPacket(req)))
	resp, err := c.tr.Exchange(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("exchange command 0x%02X: %w", req[0], err)
	}
	c.log.Debug("exchange", slog.String("response", dumpPacket(resp)))
	return resp, nil
}

// exchangeNoEcho runs an exchange for a command the firmware may not
// implement. Unsupported commands are echoed back verbatim; the first 4
// response bytes are compared to the request (4 bytes rather than the full
// packet, since a valid response can coincide with the request in a byte or
// two). Echoes are retried with a fixed delay, and exhaustion surfaces as
// *EchoError so the caller can degrade the feature instead of failing the
// session.
func (c *Client) exchangeNoEcho(ctx context.Context, req []byte) ([]byte, error) {
	for attempt := 0; attempt < c.echoRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.echoDelay):
			}
		}
		resp, err := c.exchange(ctx, req)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(resp[:4], req[:4]) {
			return resp, nil
		}
		c.log.Debug("command echoed", slog.Int("attempt", attempt+1))
	}
	return nil, &EchoError{Command: req[0], Attempts: c.echoRetries}
}

// getBuffer fetches size bytes starting at offset using the chunked buffer
// protocol shared by the keymap and macro buffers. Each request carries
// [cmd, offsetBE16, chunkLen] and each response carries up to 28 payload
// bytes after the 4-byte header. A zero-length fetch issues no requests.
func (c *Client) getBuffer(ctx context.Context, cmd byte, offset, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for pos := 0; pos < size; pos += chunkSize {
		n := chunkSize
		if size-pos < n {
			n = size - pos
		}
		req := packet.Build(cmd)
		packet.PutBE16(req, 1, uint16(offset+pos))
		req[3] = byte(n)
		resp, err := c.exchange(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, resp[4:4+n]...)
	}
	return out, nil
}

// setBuffer pushes data with the same chunked framing, payload carried in
// the request after the header.
func (c *Client) setBuffer(ctx context.Context, cmd byte, offset int, data []byte) error {
	for pos := 0; pos < len(data); pos += chunkSize {
		n := chunkSize
		if len(data)-pos < n {
			n = len(data) - pos
		}
		req := packet.Build(cmd)
		packet.PutBE16(req, 1, uint16(offset+pos))
		req[3] = byte(n)
		copy(req[4:], data[pos:pos+n])
		if _, err := c.exchange(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func dumpPacket(b []byte) string {
	hexDigits := hex.EncodeToString(b)
	var builder strings.Builder
	for i, r := range hexDigits {
		if i > 0 && i%2 == 0 {
			builder.WriteString("-")
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
