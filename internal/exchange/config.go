// Package exchange drives a query across the network to a single nameserver
// and returns its response: UDP first, falling back to TCP on truncation,
// bounded by two independent deadlines (spec §4.1/§5).
package exchange

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/domainwire/rdns/internal/journal"
	"github.com/domainwire/rdns/internal/throttle"
)

// Default timing: 2s per network round trip, 10s for the whole query.
const (
	DefaultQueryTimeout   = 2 * time.Second
	DefaultLifetime       = 10 * time.Second
	DefaultUDPPayloadSize = 1232
	DefaultMaxRetries     = 2

	// DefaultBufferSize is the UDP receive buffer's default capacity (spec
	// §6.3 buffer_size), generous enough to hold any EDNS(0) response a
	// resolver is likely to advertise support for.
	DefaultBufferSize = 65535

	// minBufferSize is the floor every BufferSize is clamped to: a buffer
	// smaller than the RFC 1035 minimum UDP message size can't even hold a
	// non-EDNS response.
	minBufferSize = 512
)

// ProtocolStrategy selects which transports the exchange driver is willing
// to use, and in what order (spec §4.9 / §6.3).
type ProtocolStrategy int

const (
	// ProtocolUDP tries UDP first, falling back to TCP when a response
	// comes back truncated (TC=1). This is the conventional stub-resolver
	// default.
	ProtocolUDP ProtocolStrategy = iota

	// ProtocolTCP skips UDP entirely and queries over TCP only.
	ProtocolTCP

	// ProtocolNoTCP queries over UDP only: a truncated response is handed
	// back to the caller as-is rather than triggering a TCP retry.
	ProtocolNoTCP
)

func (p ProtocolStrategy) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolNoTCP:
		return "no-tcp"
	default:
		return "udp"
	}
}

// Config configures a Client. Use NewConfig with Options to build one; the
// zero value is not valid on its own because Nameserver has no sane default.
type Config struct {
	Nameserver string

	QueryTimeout time.Duration
	Lifetime     time.Duration
	MaxRetries   int

	// ProtocolStrategy picks the transport state machine exchangeUDPThenTCP
	// runs (spec §4.9/§6.3). Defaults to ProtocolUDP.
	ProtocolStrategy ProtocolStrategy

	// RecursionDesired sets the RD bit on outgoing queries. Defaults to
	// true, matching conventional stub-resolver behavior.
	RecursionDesired bool

	EDNSEnabled bool

	// UDPPayloadSize is the size advertised to the nameserver in the
	// EDNS(0) OPT record when EDNSEnabled is set.
	UDPPayloadSize uint16

	// BufferSize is the requested capacity of the buffer UDP responses are
	// read into; NewConfig raises it to at least 512 bytes. The field itself
	// is not widened to UDPPayloadSize: effectiveBufferSize does that when
	// the receive buffer is allocated, so neither a plain nor an EDNS-sized
	// response can be silently truncated by too small a buffer.
	BufferSize int

	// BindDevice, when set, binds outbound UDP/TCP sockets to this network
	// device (e.g. "eth1") via SO_BINDTODEVICE before connecting, the way a
	// multi-homed resolver pins itself to a specific uplink.
	BindDevice string

	// BindAddr, when set, binds outbound sockets to this local address
	// (spec §6.3 bind_addr) — e.g. to pin egress to one of several local
	// addresses on a multi-homed host.
	BindAddr string

	// ThrottleLimit and ThrottleWindow bound how many queries Throttle
	// admits per Nameserver per window; ThrottleLimit <= 0 disables
	// throttling (the default), since most Clients are not shared across
	// enough goroutines to need it.
	ThrottleLimit  int
	ThrottleWindow time.Duration

	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Journal    journal.QueryJournal
	Throttle   throttle.DistributedThrottle
}

// effectiveBufferSize returns the buffer size the UDP receive path should
// actually allocate: at least BufferSize, and at least UDPPayloadSize when
// EDNS is enabled, so the advertised payload size is always honored.
func (c Config) effectiveBufferSize() int {
	size := c.BufferSize
	if size < minBufferSize {
		size = minBufferSize
	}
	if c.EDNSEnabled && int(c.UDPPayloadSize) > size {
		size = int(c.UDPPayloadSize)
	}
	return size
}

// Option configures a Config built by NewConfig, following the teacher's
// functional-options style (see cmd/clouddns's flag-driven setup for the
// ambient values these mirror).
type Option func(*Config)

// WithQueryTimeout overrides the per-attempt deadline (T_q in spec §5). Zero
// removes the per-attempt deadline: each attempt is then bounded only by the
// lifetime, and no UDP retries are made.
func WithQueryTimeout(d time.Duration) Option { return func(c *Config) { c.QueryTimeout = d } }

// WithLifetime overrides the overall per-query deadline (T_l in spec §5).
func WithLifetime(d time.Duration) Option { return func(c *Config) { c.Lifetime = d } }

// WithMaxRetries overrides how many additional UDP attempts follow the first
// on timeout. When they all time out the exchange fails with the last error;
// TCP is used only for a truncated response.
func WithMaxRetries(n int) Option { return func(c *Config) { c.MaxRetries = n } }

// WithProtocolStrategy selects which transports the driver is willing to
// use (spec §4.9/§6.3).
func WithProtocolStrategy(p ProtocolStrategy) Option {
	return func(c *Config) { c.ProtocolStrategy = p }
}

// WithRecursionDesired controls the RD bit on outgoing queries.
func WithRecursionDesired(on bool) Option {
	return func(c *Config) { c.RecursionDesired = on }
}

// WithEDNS enables EDNS(0) and sets the advertised UDP payload size.
func WithEDNS(payloadSize uint16) Option {
	return func(c *Config) {
		c.EDNSEnabled = true
		c.UDPPayloadSize = payloadSize
	}
}

// WithoutEDNS disables EDNS(0), reverting to the RFC 1035 512-byte UDP
// response ceiling.
func WithoutEDNS() Option {
	return func(c *Config) { c.EDNSEnabled = false }
}

// WithBufferSize overrides the UDP receive buffer's capacity (spec §6.3
// buffer_size). Values below 512 bytes are clamped up to it.
func WithBufferSize(n int) Option {
	return func(c *Config) {
		if n < minBufferSize {
			n = minBufferSize
		}
		c.BufferSize = n
	}
}

// WithBindDevice pins outbound sockets to a network device via
// SO_BINDTODEVICE (no-op on Windows).
func WithBindDevice(device string) Option { return func(c *Config) { c.BindDevice = device } }

// WithBindAddr pins outbound sockets to a specific local address.
func WithBindAddr(addr string) Option { return func(c *Config) { c.BindAddr = addr } }

// WithThrottleLimit enables admission throttling: at most limit queries per
// window per nameserver are allowed, the rest rejected with a retry-after.
func WithThrottleLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.ThrottleLimit = limit
		c.ThrottleWindow = window
	}
}

// WithLogger overrides the structured logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithRegisterer overrides the Prometheus registerer metrics are registered
// against (default prometheus.DefaultRegisterer).
func WithRegisterer(r prometheus.Registerer) Option { return func(c *Config) { c.Registerer = r } }

// WithJournal attaches a QueryJournal that records every exchange attempt
// (default: journal.NewNoopQueryJournal()).
func WithJournal(j journal.QueryJournal) Option { return func(c *Config) { c.Journal = j } }

// WithThrottle attaches a DistributedThrottle consulted once per exchange,
// before the first send, when ThrottleLimit > 0 (default:
// throttle.NewLocalThrottle()).
func WithThrottle(t throttle.DistributedThrottle) Option { return func(c *Config) { c.Throttle = t } }

// NewConfig builds a Config for nameserver with defaults applied, then
// overridden by opts in order: ProtocolUDP, RD set, EDNS(0) on at the
// default 1232-byte payload size, and a 65535-byte receive buffer (spec
// §6.3).
func NewConfig(nameserver string, opts ...Option) Config {
	c := Config{
		Nameserver:       nameserver,
		QueryTimeout:     DefaultQueryTimeout,
		Lifetime:         DefaultLifetime,
		MaxRetries:       DefaultMaxRetries,
		ProtocolStrategy: ProtocolUDP,
		RecursionDesired: true,
		EDNSEnabled:      true,
		UDPPayloadSize:   DefaultUDPPayloadSize,
		BufferSize:       DefaultBufferSize,
		Logger:           slog.Default(),
		Registerer:       prometheus.DefaultRegisterer,
		Journal:          journal.NewNoopQueryJournal(),
		Throttle:         throttle.NewLocalThrottle(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.BufferSize < minBufferSize {
		c.BufferSize = minBufferSize
	}
	return c
}
