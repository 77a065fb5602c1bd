package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/c360/modhostbridge/health"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
	pollTimeout    = 100 * time.Millisecond
	readBufferSize = 4096
)

// Publisher is the subset of the bus client the reader needs to fan events out.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Metrics is the subset of metric.Metrics the reader records against.
type Metrics interface {
	RecordFeedbackEvent(eventType string)
	RecordFeedbackReconnect()
}

// Logger is the minimal logging surface the reader needs.
type Logger interface {
	Printf(format string, v ...any)
}

type stdLogger struct{}

func (stdLogger) Printf(format string, v ...any) { fmt.Printf(format+"\n", v...) }

// Reader is the long-lived consumer of the engine's feedback port. It owns
// a reconnect-with-backoff loop and publishes every parsed record to the
// bus as a best-effort operation.
type Reader struct {
	host    string
	port    int
	subject string

	health    *health.State
	publisher Publisher
	metrics   Metrics
	logger    Logger

	stop atomic.Bool
}

// New constructs a Reader targeting host:port, publishing parsed events on
// subject via publisher, and reporting connectivity to state.
func New(host string, port int, subject string, state *health.State, publisher Publisher, metrics Metrics, logger Logger) *Reader {
	if logger == nil {
		logger = stdLogger{}
	}
	return &Reader{
		host:      host,
		port:      port,
		subject:   subject,
		health:    state,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Stop signals the run loop to exit after its current iteration.
func (r *Reader) Stop() {
	r.stop.Store(true)
}

// Run executes the connect-then-stream loop until ctx is cancelled or Stop
// is called. It never returns an error — connection failures are logged
// and retried with exponential backoff.
func (r *Reader) Run(ctx context.Context) {
	delay := initialBackoff

	for !r.stop.Load() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", r.host, r.port), time.Second)
		if err != nil {
			r.health.MarkFeedback(false)
			r.metrics.RecordFeedbackReconnect()
			r.logger.Printf("feedback: connect failed: %v, retrying in %v", err, delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
			continue
		}

		configureSocket(conn)
		r.health.MarkFeedback(true)
		delay = initialBackoff

		r.stream(ctx, conn)
		conn.Close()
		r.health.MarkFeedback(false)
	}
}

// configureSocket applies TCP_NODELAY and best-effort keepalive settings:
// idle=10s, interval=5s, count=3, matching what the engine's feedback
// stream expects of a long-lived consumer.
func configureSocket(conn net.Conn) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcpConn.SetNoDelay(true)
	_ = tcpConn.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     10 * time.Second,
		Interval: 5 * time.Second,
		Count:    3,
	})
}

// stream reads records from conn until it closes, the shutdown flag is set,
// or a non-retryable error occurs. Each NUL byte terminates one record.
func (r *Reader) stream(ctx context.Context, conn net.Conn) {
	var line strings.Builder
	buf := make([]byte, readBufferSize)

	for {
		if r.stop.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(pollTimeout))
		n, err := conn.Read(buf)
		if n > 0 {
			r.consume(ctx, buf[:n], &line)
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// EOF or any other error: peer closed or connection broken.
			return
		}
	}
}

func (r *Reader) consume(ctx context.Context, chunk []byte, line *strings.Builder) {
	for _, b := range chunk {
		if b == 0 {
			record := line.String()
			line.Reset()
			if record == "" {
				continue
			}
			r.handleRecord(ctx, record)
			continue
		}
		line.WriteByte(b)
	}
}

func (r *Reader) handleRecord(ctx context.Context, record string) {
	event := Parse(record)
	r.metrics.RecordFeedbackEvent(event.Type)

	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Printf("feedback: failed to marshal event: %v", err)
		return
	}

	if err := r.publisher.Publish(ctx, r.subject, payload); err != nil {
		r.logger.Printf("feedback: publish failed: %v", err)
	}
}
