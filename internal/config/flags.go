// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// FlagValues receives the values of the flags registered by BindFlags.
// Its fields are filled when the owning flag set is parsed.
type FlagValues struct {
	cfg           StructuredConfig
	statusAddress NetAddress
}

// BindFlags registers every configuration flag on fs and returns the holder
// that will receive the parsed values.
//
// Flags:
//
//	-c/--config        json file path with configs
//	-d/--db            local database DSN
//	-a/--api           remote API base URL
//	--api-prefix       path prefix of collection endpoints
//	--health-path      path probed for connectivity
//	--request-timeout  per-request replay timeout (e.g. "10s")
//	--token            bearer token for the remote API
//	--sync-interval    safety-net drain period
//	--probe-interval   connectivity probe period
//	--debounce         connectivity debounce window
//	--max-retries      outbox retry ceiling
//	--replay-concurrency records replayed in parallel
//	--listen           status API address host:port
//	--log-level        zerolog level
//	--log-file         rotating log file path
func BindFlags(fs *pflag.FlagSet) *FlagValues {
	v := &FlagValues{}
	c := &v.cfg

	fs.StringVarP(&c.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&c.Storage.DB.DSN, "db", "d", "", "Local database DSN")
	fs.StringVarP(&c.Adapter.HTTPAddress, "api", "a", "", "Remote API base URL")
	fs.StringVar(&c.Adapter.APIPrefix, "api-prefix", "", "Path prefix of collection endpoints")
	fs.StringVar(&c.Adapter.HealthPath, "health-path", "", "Path probed for connectivity")
	fs.DurationVar(&c.Adapter.RequestTimeout, "request-timeout", 0, "Replay request timeout (e.g., 10s)")
	fs.StringVar(&c.Adapter.Token, "token", "", "Bearer token for the remote API")
	fs.DurationVar(&c.Workers.SyncInterval, "sync-interval", 0, "Safety-net drain period (e.g., 1m)")
	fs.DurationVar(&c.Workers.ProbeInterval, "probe-interval", 0, "Connectivity probe period (e.g., 15s)")
	fs.DurationVar(&c.Workers.Debounce, "debounce", 0, "Connectivity debounce window (e.g., 2s)")
	fs.IntVar(&c.Workers.MaxRetries, "max-retries", 0, "Outbox retry ceiling")
	fs.IntVar(&c.Workers.ReplayConcurrency, "replay-concurrency", 0, "Records replayed in parallel")
	fs.Var(&v.statusAddress, "listen", "Status API address host:port")
	fs.StringVar(&c.App.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&c.App.LogFile, "log-file", "", "Rotating log file path")

	return v
}

// config returns the flag values as a StructuredConfig.
func (v *FlagValues) config() *StructuredConfig {
	cfg := v.cfg
	cfg.Server.HTTPAddress = v.statusAddress.String()
	return &cfg
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
