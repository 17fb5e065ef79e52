// Command dnsdig issues a single DNS query against a configured nameserver
// and prints the resolved record set, exercising the exchange package the
// way cmd/clouddns exercises the server package (spec SPEC_FULL.md §4.13).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/domainwire/rdns/internal/exchange"
	"github.com/domainwire/rdns/internal/rdnsconfig"
	"github.com/domainwire/rdns/internal/wire"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("dnsdig failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	fs := pflag.NewFlagSet("dnsdig", pflag.ExitOnError)
	rdnsconfig.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cliCfg, err := rdnsconfig.Load(fs)
	if err != nil {
		return err
	}

	qtype, err := wire.ParseType(cliCfg.QType)
	if err != nil {
		return fmt.Errorf("invalid query type %q: %w", cliCfg.QType, err)
	}

	nameserver := cliCfg.Nameserver
	if _, _, err := net.SplitHostPort(nameserver); err != nil {
		nameserver = net.JoinHostPort(nameserver, "53")
	}

	exchangeOpts, err := cliCfg.ToExchangeOptions()
	if err != nil {
		return err
	}
	opts := append(exchangeOpts, exchange.WithLogger(logger))
	client := exchange.New(exchange.NewConfig(nameserver, opts...))

	question, err := wire.NewQuestion(cliCfg.QName, qtype, wire.ClassIN)
	if err != nil {
		return fmt.Errorf("invalid query name %q: %w", cliCfg.QName, err)
	}
	rs, err := client.Exchange(ctx, question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Printf("; answer for %s %s (ttl %ds)\n", rs.Name, rs.Type, rs.TTL)
	for _, hop := range rs.CNAMEChain {
		fmt.Printf("; cname -> %s\n", hop)
	}
	for _, rd := range rs.Records {
		fmt.Printf("%s\t%d\t%s\t%v\n", rs.Name, rs.TTL, rs.Class, rd)
	}
	return nil
}
