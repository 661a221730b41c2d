// Copyright 2026 The PolicyMaker Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/peterhriser/PolicyMaker/lib/config"
)

// errHelpShown stops run after --help output.
var errHelpShown = errors.New("help shown")

// options holds parsed flags. Only flags the user set override the
// config file and environment.
type options struct {
	flagSet *pflag.FlagSet

	configPath          string
	exportKnowledgeBase string
	showVersion         bool

	host           string
	port           int
	receiveBuffer  int
	receiveTimeout time.Duration
	shutdownPoll   time.Duration
	knowledgeBase  string
	outputFile     string
	format         string
	sid            string
	indent         string
	logLevel       string
	logFormat      string
	metricsListen  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	defaults := config.Default()

	flagSet := pflag.NewFlagSet("policymaker", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.ConfigEnvironmentVariable+")")
	flagSet.StringVar(&opts.host, "host", defaults.Listen.Host, "UDP bind address ($HOST)")
	flagSet.IntVarP(&opts.port, "port", "p", defaults.Listen.Port, "UDP port SDKs send CSM records to ($PORT)")
	flagSet.IntVar(&opts.receiveBuffer, "receive-buffer", 0, "SO_RCVBUF size in bytes (0 keeps the kernel default)")
	flagSet.DurationVar(&opts.receiveTimeout, "receive-timeout", defaults.Listen.ReceiveTimeout, "upper bound on each socket receive")
	flagSet.DurationVar(&opts.shutdownPoll, "shutdown-poll", 0, "wait for a shutdown signal between receives (at most 1s)")
	flagSet.StringVar(&opts.knowledgeBase, "knowledge-base", "", "knowledge-base file replacing the embedded mappings")
	flagSet.StringVar(&opts.exportKnowledgeBase, "export-knowledge-base", "", "write the active knowledge base to this path and exit")
	flagSet.StringVarP(&opts.outputFile, "output-file", "o", "", "write the policy here instead of stdout")
	flagSet.StringVar(&opts.format, "format", defaults.Output.Format, "policy format: json or yaml")
	flagSet.StringVar(&opts.sid, "sid", "", "Sid to set on the policy document")
	flagSet.StringVar(&opts.indent, "indent", defaults.Output.Indent, "indent the policy: auto, always, or never")
	flagSet.StringVar(&opts.logLevel, "log-level", defaults.Log.Level, "debug, info, warn, or error")
	flagSet.StringVar(&opts.logFormat, "log-format", defaults.Log.Format, "auto, text, or json")
	flagSet.StringVar(&opts.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }
	opts.flagSet = flagSet

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, errHelpShown
		}
		return nil, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil, errHelpShown
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// apply copies every explicitly set flag onto cfg.
func (o *options) apply(cfg *config.Config) {
	changed := o.flagSet.Changed
	if changed("host") {
		cfg.Listen.Host = o.host
	}
	if changed("port") {
		cfg.Listen.Port = o.port
	}
	if changed("receive-buffer") {
		cfg.Listen.ReceiveBuffer = o.receiveBuffer
	}
	if changed("receive-timeout") {
		cfg.Listen.ReceiveTimeout = o.receiveTimeout
	}
	if changed("shutdown-poll") {
		cfg.Listen.ShutdownPoll = o.shutdownPoll
	}
	if changed("knowledge-base") {
		cfg.KnowledgeBase = o.knowledgeBase
	}
	if changed("output-file") {
		cfg.Output.File = o.outputFile
	}
	if changed("format") {
		cfg.Output.Format = o.format
	}
	if changed("sid") {
		cfg.Output.Sid = o.sid
	}
	if changed("indent") {
		cfg.Output.Indent = o.indent
	}
	if changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if changed("metrics-listen") {
		cfg.Metrics.Listen = o.metricsListen
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `policymaker: build a least-privilege IAM policy from AWS SDK CSM traffic.

Run the monitor, point SDKs at it (AWS_CSM_ENABLED=true,
AWS_CSM_PORT=31000), exercise your application, then press Ctrl-C.
The policy covering every observed call is written on shutdown.

Usage: policymaker [flags]

Flags:
%s`, flagSet.FlagUsages())
}
