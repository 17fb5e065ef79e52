package exchange

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/domainwire/rdns/internal/journal"
	"github.com/domainwire/rdns/internal/wire"
)

const maxTCPMessageSize = 65535

// Client exchanges one question at a time with a single configured
// nameserver over UDP, falling back to TCP when the UDP response is
// truncated (spec §4.1, gated by Config.ProtocolStrategy). A Client enforces
// the single-in-flight rule of spec §5: concurrent Exchange/QueryRaw calls
// on the same Client serialize on an internal mutex rather than racing the
// network.
type Client struct {
	cfg Config
	met *clientMetrics

	mu sync.Mutex
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, met: newClientMetrics(cfg.Registerer)}
}

// Config returns a copy of the Client's configuration.
func (c *Client) Config() *Config {
	cfg := c.cfg
	return &cfg
}

// Exchange sends one question to the configured nameserver and returns the
// assembled RecordSet, chasing CNAMEs per spec §4.8. It enforces two
// deadlines (spec §5): ctx (or cfg.Lifetime, whichever is sooner) bounds the
// whole call including TCP fallback and retries; cfg.QueryTimeout bounds
// each individual network round trip.
func (c *Client) Exchange(ctx context.Context, question wire.Question) (*wire.RecordSet, error) {
	rs, _, err := c.exchange(ctx, question)
	if err == nil && rs == nil {
		// The response came back truncated and was returned as-is: a UDP
		// response under ProtocolNoTCP (spec §4.9/§6.3), or a TCP response
		// that itself has TC set. There is no complete RecordSet to hand back;
		// callers who want the partial bytes anyway should use QueryRaw.
		return nil, wire.ErrMessageTruncated
	}
	return rs, err
}

// QueryRaw sends a single question built from qname/qtype/qclass through the
// same UDP/TCP driver as Exchange, but returns the undecoded wire-format
// response copied into out (without the TCP length prefix) instead of an
// assembled RecordSet, for callers that want to decode the message
// themselves (spec §6.3).
func (c *Client) QueryRaw(ctx context.Context, qname string, qtype wire.Type, qclass wire.Class, out []byte) (int, error) {
	question, err := wire.NewQuestion(qname, qtype, qclass)
	if err != nil {
		return 0, fmt.Errorf("exchange: invalid query name %q: %w", qname, err)
	}
	_, raw, err := c.exchange(ctx, question)
	if err != nil {
		return 0, err
	}
	return copy(out, raw), nil
}

// exchange is the shared driver behind Exchange and QueryRaw: it generates
// one transaction ID, runs the UDP/TCP state machine, and records metrics
// and journal entries, returning both the assembled RecordSet (nil if the
// message couldn't be fully decoded) and the raw response bytes.
func (c *Client) exchange(ctx context.Context, question wire.Question) (*wire.RecordSet, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.met.inflight.Inc()
	defer c.met.inflight.Dec()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Lifetime)
	defer cancel()

	correlationID := uuid.New()
	log := c.cfg.Logger.With("correlation_id", correlationID, "qname", question.QName.String(), "qtype", question.QType)

	if c.cfg.ThrottleLimit > 0 {
		decision, err := c.cfg.Throttle.Allow(ctx, c.cfg.Nameserver, c.cfg.ThrottleLimit, c.cfg.ThrottleWindow)
		if err != nil {
			log.Warn("throttle check failed, proceeding", "err", err)
		} else if !decision.Allowed {
			log.Warn("exchange throttled", "retry_after", decision.RetryAfter)
			return nil, nil, fmt.Errorf("exchange: throttled, retry after %s", decision.RetryAfter)
		}
	}

	// Spec §4.9: a resend must carry the same message ID as the original
	// attempt, so the transaction ID is minted once per exchange and reused
	// across every UDP retry and the TCP fallback.
	id, err := randomID()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	rs, raw, protocol, truncated, rcode, exchangeErr := c.exchangeUDPThenTCP(ctx, id, question, log)
	rtt := time.Since(start)

	if exchangeErr != nil {
		log.Warn("exchange failed", "protocol", protocol, "err", exchangeErr)
	} else {
		log.Debug("exchange complete", "protocol", protocol, "rcode", rcode, "rtt", rtt)
	}

	c.recordMetrics(question.QType, protocol, exchangeErr, rtt)
	c.recordJournal(ctx, correlationID, question, protocol, truncated, rcode, rtt, exchangeErr)

	return rs, raw, exchangeErr
}

// exchangeUDPThenTCP runs the transport state machine selected by
// Config.ProtocolStrategy (spec §4.9/§6.3):
//
//   - ProtocolUDP (default): try UDP, retrying up to MaxRetries times on
//     timeout (no retries when QueryTimeout is zero), and fall back to TCP
//     when a response comes back truncated.
//   - ProtocolTCP: skip UDP entirely and query over TCP only.
//   - ProtocolNoTCP: query over UDP only; a truncated response is returned
//     as-is rather than triggering a TCP retry.
func (c *Client) exchangeUDPThenTCP(ctx context.Context, id uint16, question wire.Question, log *slog.Logger) (rs *wire.RecordSet, raw []byte, protocol string, truncated bool, rcode wire.RCode, err error) {
	var header wire.Header
	var lastErr error

	if c.cfg.ProtocolStrategy != ProtocolTCP {
		maxRetries := c.cfg.MaxRetries
		if c.cfg.QueryTimeout <= 0 {
			maxRetries = 0
		}
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				c.met.udpRetries.Inc()
				log.Debug("retrying udp", "attempt", attempt)
			}
			header, raw, rs, truncated, lastErr = c.attempt(ctx, "udp", id, question, c.cfg.effectiveBufferSize())
			if lastErr == nil {
				if !truncated {
					return rs, raw, "udp", false, header.Flags.RCode(), nil
				}
				if c.cfg.ProtocolStrategy == ProtocolNoTCP {
					log.Debug("udp response truncated, returning as-is (no-tcp strategy)")
					return rs, raw, "udp", true, header.Flags.RCode(), nil
				}
				log.Debug("udp response truncated, falling back to tcp")
				break
			}
			if !errors.Is(lastErr, wire.ErrTimeout) {
				return nil, nil, "udp", false, 0, lastErr
			}
		}

		if lastErr != nil && !truncated {
			return nil, nil, "udp", false, 0, lastErr
		}
	}

	c.met.tcpFallbacks.Inc()
	header, raw, rs, truncated, lastErr = c.attempt(ctx, "tcp", id, question, maxTCPMessageSize)
	if lastErr != nil {
		return nil, nil, "tcp", truncated, 0, lastErr
	}
	return rs, raw, "tcp", truncated, header.Flags.RCode(), nil
}

// attempt sends question once over protocol ("udp" or "tcp") using id as the
// transaction ID, and parses the response, bounded by cfg.QueryTimeout when
// it is positive and otherwise by ctx alone. It returns the decoded header
// (for RCODE/TC reporting), the raw response bytes, and the assembled
// RecordSet on success.
func (c *Client) attempt(ctx context.Context, protocol string, id uint16, question wire.Question, bufSize int) (wire.Header, []byte, *wire.RecordSet, bool, error) {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.cfg.QueryTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	defer cancel()

	deadline, _ := attemptCtx.Deadline()

	msg, err := c.buildQuery(id, question)
	if err != nil {
		return wire.Header{}, nil, nil, false, err
	}

	var raw []byte
	switch protocol {
	case "udp":
		raw, err = c.roundTripUDP(msg, bufSize, deadline, id, question)
	case "tcp":
		raw, err = c.roundTripTCP(msg, deadline)
	default:
		err = fmt.Errorf("exchange: unknown protocol %q", protocol)
	}
	if err != nil {
		return wire.Header{}, nil, nil, false, err
	}

	header, rs, truncated, err := c.parseResponse(raw, id, question)
	return header, raw, rs, truncated, err
}

func (c *Client) buildQuery(id uint16, question wire.Question) ([]byte, error) {
	qw := wire.NewQueryWriter(id, question)
	qw.SetRecursionDesired(c.cfg.RecursionDesired)
	if c.cfg.EDNSEnabled {
		qw.SetEDNS(wire.EDNSPseudoRR{UDPPayloadSize: c.cfg.UDPPayloadSize})
	}
	buf := make([]byte, 2+maxTCPMessageSize)
	encoded, err := qw.Encode(buf)
	if err != nil {
		return nil, fmt.Errorf("exchange: encode query: %w", err)
	}
	return encoded, nil
}

// dialer builds a net.Dialer for network ("udp" or "tcp"), wiring in
// BindDevice (SO_BINDTODEVICE) and BindAddr (local source address) when
// configured.
func (c *Client) dialer(network string) (*net.Dialer, error) {
	d := &net.Dialer{}
	if c.cfg.BindDevice != "" {
		d.Control = bindToDeviceControl(c.cfg.BindDevice)
	}
	if c.cfg.BindAddr != "" {
		local, err := resolveLocalAddr(network, c.cfg.BindAddr)
		if err != nil {
			return nil, fmt.Errorf("exchange: resolve bind_addr %q: %w", c.cfg.BindAddr, err)
		}
		d.LocalAddr = local
	}
	return d, nil
}

func resolveLocalAddr(network, addr string) (net.Addr, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "0")
	}
	switch network {
	case "udp":
		return net.ResolveUDPAddr("udp", addr)
	case "tcp":
		return net.ResolveTCPAddr("tcp", addr)
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

// datagramMatches reports whether raw looks like a well-formed answer to
// wantID/question. Spec §4.9/§7 require a mismatched or malformed UDP
// datagram to be silently discarded rather than treated as an error, since
// an off-path or stale response must not abort an otherwise-live query.
func datagramMatches(raw []byte, wantID uint16, question wire.Question) bool {
	reader := wire.NewMessageReader(raw)
	header, err := reader.Header()
	if err != nil || header.ID != wantID {
		return false
	}
	got, err := reader.Question()
	if err != nil {
		return false
	}
	return wire.EqualNames(got.QName.String(), question.QName.String()) &&
		got.QType == question.QType && got.QClass == question.QClass
}

// roundTripUDP sends encoded once and reads datagrams until one matches
// wantID/question or the deadline passes (spec §4.9/§7); every non-matching
// datagram received in between is silently discarded and the read resumes.
func (c *Client) roundTripUDP(encoded []byte, bufSize int, deadline time.Time, wantID uint16, question wire.Question) ([]byte, error) {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	d, err := c.dialer("udp")
	if err != nil {
		return nil, err
	}
	conn, err := d.DialContext(ctx, "udp", c.cfg.Nameserver)
	if err != nil {
		return nil, fmt.Errorf("exchange: dial udp: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	payload := wire.WithoutLengthPrefix(encoded)
	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("exchange: write udp: %w", err)
	}

	resp := make([]byte, bufSize)
	for {
		n, err := conn.Read(resp)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return nil, wire.ErrTimeout
			}
			return nil, fmt.Errorf("exchange: read udp: %w", err)
		}
		datagram := resp[:n]
		if !datagramMatches(datagram, wantID, question) {
			continue
		}
		return append([]byte(nil), datagram...), nil
	}
}

func (c *Client) roundTripTCP(encoded []byte, deadline time.Time) ([]byte, error) {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	d, err := c.dialer("tcp")
	if err != nil {
		return nil, err
	}
	conn, err := d.DialContext(ctx, "tcp", c.cfg.Nameserver)
	if err != nil {
		return nil, fmt.Errorf("exchange: dial tcp: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := conn.Write(encoded); err != nil {
		return nil, fmt.Errorf("exchange: write tcp: %w", err)
	}

	var lenPrefix [2]byte
	if _, err := readFull(conn, lenPrefix[:]); err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, wire.ErrTimeout
		}
		return nil, fmt.Errorf("exchange: read tcp length: %w", err)
	}
	msgLen := int(lenPrefix[0])<<8 | int(lenPrefix[1])

	resp := make([]byte, msgLen)
	if _, err := readFull(conn, resp); err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, wire.ErrTimeout
		}
		return nil, fmt.Errorf("exchange: read tcp message: %w", err)
	}
	return resp, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// parseResponse decodes raw as a message, verifies it answers question with
// the expected ID, and assembles the RecordSet. It deliberately does not
// treat TC as a hard error here — the caller decides whether to fall back to
// TCP or, under ProtocolNoTCP, return the truncated result as-is.
func (c *Client) parseResponse(raw []byte, wantID uint16, question wire.Question) (wire.Header, *wire.RecordSet, bool, error) {
	reader := wire.NewMessageReader(raw)
	header, err := reader.Header()
	if err != nil {
		return wire.Header{}, nil, false, fmt.Errorf("exchange: decode header: %w", err)
	}
	if header.ID != wantID {
		return wire.Header{}, nil, false, fmt.Errorf("exchange: response ID %d does not match query ID %d", header.ID, wantID)
	}

	gotQuestion, err := reader.Question()
	if err != nil {
		return wire.Header{}, nil, false, fmt.Errorf("exchange: decode question: %w", err)
	}
	if !wire.EqualNames(gotQuestion.QName.String(), question.QName.String()) ||
		gotQuestion.QType != question.QType || gotQuestion.QClass != question.QClass {
		return wire.Header{}, nil, false, fmt.Errorf("exchange: response question does not match query")
	}

	// BuildRecordSet itself rejects TC=1 outright (a truncated message is
	// never a complete answer); skip calling it so that rejection doesn't
	// masquerade as a decode error here — the caller decides what a
	// truncated response means (retry over TCP, or return it as-is).
	if header.Flags.Truncated() {
		return header, nil, true, nil
	}

	rs, err := wire.BuildRecordSet(reader, header, gotQuestion)
	if err != nil {
		return header, nil, false, err
	}
	return header, rs, false, nil
}

func (c *Client) recordMetrics(qtype wire.Type, protocol string, err error, rtt time.Duration) {
	outcome := "answered"
	var rcodeErr *wire.BadResponseCodeError
	switch {
	case err == nil:
	case errors.As(err, &rcodeErr) && rcodeErr.RCode == wire.RCodeNXDomain:
		outcome = "nxdomain"
	case errors.As(err, &rcodeErr) && rcodeErr.RCode == wire.RCodeServFail:
		outcome = "servfail"
	case errors.Is(err, wire.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	c.met.queriesTotal.WithLabelValues(qtype.String(), protocol, outcome).Inc()
	c.met.queryDuration.WithLabelValues(protocol).Observe(rtt.Seconds())
}

func (c *Client) recordJournal(ctx context.Context, correlationID uuid.UUID, question wire.Question, protocol string, truncated bool, rcode wire.RCode, rtt time.Duration, exchangeErr error) {
	entry := journal.QueryJournalEntry{
		ID:        correlationID,
		QName:     question.QName.String(),
		QType:     uint16(question.QType),
		QClass:    uint16(question.QClass),
		Server:    c.cfg.Nameserver,
		Protocol:  protocol,
		RCode:     uint8(rcode),
		RTT:       rtt,
		Truncated: truncated,
		At:        time.Now(),
	}
	if exchangeErr != nil {
		entry.Err = exchangeErr.Error()
	}
	if err := c.cfg.Journal.Record(ctx, entry); err != nil {
		c.cfg.Logger.Warn("query journal write failed", "correlation_id", correlationID, "err", err)
	}
}

func randomID() (uint16, error) {
	var id uint16
	if err := binary.Read(rand.Reader, binary.BigEndian, &id); err != nil {
		return 0, fmt.Errorf("exchange: generate transaction id: %w", err)
	}
	return id, nil
}
