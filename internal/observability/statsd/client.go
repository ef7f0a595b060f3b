// Package statsd emits cache and job lifecycle metrics over the StatsD line
// protocol. The client is deliberately small: this service only needs
// counters and timings, fire and forget over UDP.
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink is the metric surface the rest of the service emits through.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes how to reach a StatsD-compatible endpoint.
type Config struct {
	Enabled bool
	Address string
	Prefix  string
	Logger  *slog.Logger
	// GlobalTags are attached to every line; per-call tags win on collision.
	GlobalTags map[string]string
}

// Client writes StatsD lines over UDP and is safe for concurrent use. A
// disabled client is a valid no-op sink, so callers never branch on
// configuration.
type Client struct {
	prefix     string
	globalTags map[string]string
	logger     *slog.Logger

	mu      sync.Mutex
	conn    net.Conn
	enabled bool
}

var _ Sink = (*Client)(nil)

const dialTimeout = 5 * time.Second

// NewClient dials the endpoint unless metrics are disabled or no address is
// configured; in both cases it returns a working no-op client.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		globalTags: mergeTags(cfg.GlobalTags, nil),
		logger:     logger,
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}
	client.conn = conn
	client.enabled = true
	return client, nil
}

// Enabled reports whether lines are actually being sent.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && c.conn != nil
}

// Count adds value to a counter.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close tears down the UDP connection; the client degrades to a no-op and
// Close stays safe to call again.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, unit string, tags map[string]string) {
	if c == nil {
		return
	}
	metric := qualifyName(c.prefix, name)
	if metric == "" {
		return
	}

	var line strings.Builder
	line.WriteString(metric)
	line.WriteByte(':')
	line.WriteString(value)
	line.WriteByte('|')
	line.WriteString(unit)
	line.WriteString(tagSuffix(c.globalTags, tags))

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line.String())); err != nil {
		// Metrics are best effort; a dropped line is not worth more than a
		// debug log.
		c.logger.Debug("statsd write failed", "metric", metric, "error", err)
	}
}

// qualifyName joins the prefix and a cleaned metric name. Spaces and slashes
// become underscores, repeated dots collapse, and a name that cleans to
// nothing yields no line at all.
func qualifyName(prefix, name string) string {
	n := strings.TrimSpace(name)
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "/", "_")
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	n = strings.Trim(n, ".")

	switch {
	case n == "":
		return ""
	case prefix == "":
		return n
	default:
		return prefix + "." + n
	}
}

// tagSuffix renders the DogStatsD tag block for the merged global and
// per-call tags. Keys sort so lines are stable for tests and for dedup on the
// wire.
func tagSuffix(global, extra map[string]string) string {
	merged := mergeTags(global, extra)
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
	return b.String()
}

// mergeTags trims and merges tag maps, dropping empty keys. The override map
// wins on collision. Always returns a fresh map so callers can retain it.
func mergeTags(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for _, src := range []map[string]string{base, override} {
		for k, v := range src {
			key := strings.TrimSpace(k)
			if key == "" {
				continue
			}
			merged[key] = strings.TrimSpace(v)
		}
	}
	return merged
}
