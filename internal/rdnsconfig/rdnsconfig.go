// Package rdnsconfig loads CLI-facing configuration for cmd/dnsdig using
// pflag and viper, the way the rest of the pack's CLIs do (SPEC_FULL.md
// §2.1), translating flags/env/defaults into an exchange.Config.
package rdnsconfig

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domainwire/rdns/internal/exchange"
)

// CLIConfig is the flat configuration surface cmd/dnsdig exposes, before
// translation into exchange.Config.
type CLIConfig struct {
	Nameserver       string
	QName            string
	QType            string
	QueryTimeout     time.Duration
	Lifetime         time.Duration
	MaxRetries       int
	ProtocolStrategy string
	Recursion        bool
	EDNS             bool
	UDPPayloadSize   uint16
	BufferSize       int
	BindDevice       string
	BindAddr         string
}

// RegisterFlags declares the pflag flags rdnsconfig reads, so cmd/dnsdig's
// main can call pflag.Parse() itself before Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("server", "127.0.0.1:53", "nameserver address (host:port)")
	fs.String("name", "", "query name")
	fs.String("type", "A", "query type mnemonic, e.g. A, AAAA, MX")
	fs.Duration("query-timeout", exchange.DefaultQueryTimeout, "per-attempt deadline")
	fs.Duration("lifetime", exchange.DefaultLifetime, "overall deadline across retries and TCP fallback")
	fs.Int("max-retries", exchange.DefaultMaxRetries, "additional UDP attempts after a timeout")
	fs.String("protocol-strategy", "udp", "transport strategy: udp (UDP then TCP on truncation), tcp (TCP only), no-tcp (UDP only)")
	fs.Bool("recursion", true, "set the RD bit on outgoing queries")
	fs.Bool("edns", true, "advertise EDNS(0) support")
	fs.Uint16("udp-payload-size", exchange.DefaultUDPPayloadSize, "EDNS(0) advertised UDP payload size")
	fs.Int("buffer-size", exchange.DefaultBufferSize, "UDP receive buffer size")
	fs.String("bind-device", "", "bind outbound sockets to this network device (Linux only)")
	fs.String("bind-addr", "", "bind outbound sockets to this local address")
}

// Load reads flags and the RDNS_-prefixed environment into a CLIConfig,
// using fs as the already-parsed flag set (mirrors the teacher's
// os.Getenv-with-fallback pattern in cmd/clouddns/main.go, generalized to
// viper so flags, env, and defaults compose instead of being checked by
// hand one at a time).
func Load(fs *pflag.FlagSet) (CLIConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RDNS")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return CLIConfig{}, fmt.Errorf("rdnsconfig: bind flags: %w", err)
	}

	cfg := CLIConfig{
		Nameserver:       v.GetString("server"),
		QName:            v.GetString("name"),
		QType:            v.GetString("type"),
		QueryTimeout:     v.GetDuration("query-timeout"),
		Lifetime:         v.GetDuration("lifetime"),
		MaxRetries:       v.GetInt("max-retries"),
		ProtocolStrategy: v.GetString("protocol-strategy"),
		Recursion:        v.GetBool("recursion"),
		EDNS:             v.GetBool("edns"),
		UDPPayloadSize:   uint16(v.GetUint32("udp-payload-size")),
		BufferSize:       v.GetInt("buffer-size"),
		BindDevice:       v.GetString("bind-device"),
		BindAddr:         v.GetString("bind-addr"),
	}
	if cfg.QName == "" {
		return CLIConfig{}, fmt.Errorf("rdnsconfig: --name is required")
	}
	return cfg, nil
}

func parseProtocolStrategy(s string) (exchange.ProtocolStrategy, error) {
	switch s {
	case "", "udp":
		return exchange.ProtocolUDP, nil
	case "tcp":
		return exchange.ProtocolTCP, nil
	case "no-tcp", "notcp":
		return exchange.ProtocolNoTCP, nil
	default:
		return 0, fmt.Errorf("rdnsconfig: unknown protocol-strategy %q (want udp, tcp, or no-tcp)", s)
	}
}

// ToExchangeOptions translates c into exchange.Options layered onto
// exchange.NewConfig.
func (c CLIConfig) ToExchangeOptions() ([]exchange.Option, error) {
	strategy, err := parseProtocolStrategy(c.ProtocolStrategy)
	if err != nil {
		return nil, err
	}

	opts := []exchange.Option{
		exchange.WithQueryTimeout(c.QueryTimeout),
		exchange.WithLifetime(c.Lifetime),
		exchange.WithMaxRetries(c.MaxRetries),
		exchange.WithProtocolStrategy(strategy),
		exchange.WithRecursionDesired(c.Recursion),
		exchange.WithBufferSize(c.BufferSize),
	}
	if c.EDNS {
		opts = append(opts, exchange.WithEDNS(c.UDPPayloadSize))
	} else {
		opts = append(opts, exchange.WithoutEDNS())
	}
	if c.BindDevice != "" {
		opts = append(opts, exchange.WithBindDevice(c.BindDevice))
	}
	if c.BindAddr != "" {
		opts = append(opts, exchange.WithBindAddr(c.BindAddr))
	}
	return opts, nil
}
