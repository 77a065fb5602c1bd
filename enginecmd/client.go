// Package enginecmd implements the short-lived TCP request/reply exchange
// against the engine's command port. Each call opens a fresh socket; the
// engine closes the connection after replying, and the client never pools
// connections — the protocol is designed for one-shot exchanges.
package enginecmd

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/c360/modhostbridge/errors"
	"github.com/c360/modhostbridge/health"
)

const recvTimeout = time.Second

// Metrics is the subset of metric.Metrics the client records against.
type Metrics interface {
	RecordEngineCommand(command string, duration time.Duration, err error)
}

// Client sends commands to the engine over a fresh TCP connection per call
// and reports connectivity to a shared health.State.
type Client struct {
	host    string
	port    int
	health  *health.State
	metrics Metrics
}

// New creates a client targeting host:port, updating health and metrics on
// every call. metrics may be nil, in which case commands are not recorded.
func New(host string, port int, state *health.State, metrics Metrics) *Client {
	return &Client{host: host, port: port, health: state, metrics: metrics}
}

// Result is a successfully parsed engine reply.
type Result struct {
	// Raw is the full reply body with trailing NUL/whitespace stripped.
	Raw string
	// Code is the integer following "resp " on the first line, if present.
	Code int
	// HasCode reports whether Code was successfully parsed.
	HasCode bool
}

// Send opens a connection, writes command NUL-terminated, reads the reply
// until the engine closes the socket or recvTimeout elapses, and parses the
// leading "resp <n>" token if present.
func (c *Client) Send(command string) (result Result, err error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordEngineCommand(commandName(command), time.Since(start), err)
		}
	}()

	addr, err := c.resolve()
	if err != nil {
		c.health.MarkCommand(false)
		return Result{}, errors.WrapTransient(err, "Client", "Send", "resolve engine host")
	}

	conn, err := net.DialTimeout("tcp", addr, recvTimeout)
	if err != nil {
		c.health.MarkCommand(false)
		return Result{}, errors.WrapTransient(err, "Client", "Send", "dial engine command port")
	}
	defer conn.Close()

	if _, werr := conn.Write(append([]byte(command), 0)); werr != nil {
		c.health.MarkCommand(false)
		err = errors.WrapTransient(werr, "Client", "Send", "write command")
		return Result{}, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(recvTimeout))

	var buf strings.Builder
	reader := bufio.NewReader(conn)
	chunk := make([]byte, 4096)
	for {
		n, readErr := reader.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if readErr != nil {
			break
		}
	}

	raw := strings.TrimRight(buf.String(), "\x00 \t\r\n")
	c.health.MarkCommand(true)

	result = Result{Raw: raw}
	if code, ok := parseRespCode(raw); ok {
		result.Code = code
		result.HasCode = true
	}
	return result, nil
}

// commandName extracts the leading token of command for use as a metrics
// label, so "param_set 3 gain 0.5" and "param_set 4 gain 0.2" share one
// series instead of creating one per invocation.
func commandName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}

// parseRespCode extracts n from a leading "resp <n>" token.
func parseRespCode(raw string) (int, bool) {
	fields := strings.Fields(raw)
	if len(fields) < 2 || fields[0] != "resp" {
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolve returns the host:port to dial. A literal IP address is used as
// is; otherwise the host is looked up, preferring the first IPv4 address
// and falling back to the first address of any family.
func (c *Client) resolve() (string, error) {
	if ip := net.ParseIP(c.host); ip != nil {
		return net.JoinHostPort(c.host, strconv.Itoa(c.port)), nil
	}

	ips, err := net.LookupIP(c.host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return net.JoinHostPort(v4.String(), strconv.Itoa(c.port)), nil
		}
	}
	if len(ips) > 0 {
		return net.JoinHostPort(ips[0].String(), strconv.Itoa(c.port)), nil
	}
	return "", fmt.Errorf("no addresses found for %s", c.host)
}
