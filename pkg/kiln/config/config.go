// Package config decodes the options this server accepts — size limits,
// timeouts, worker sizing, and listen addresses — from a loosely-typed
// source (e.g. parsed YAML/JSON/env map) into a strongly-typed Config,
// using the same decode-hook-based mapstructure pipeline common for this
// kind of compose-file-style loading.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/kilnhttp/kiln/pkg/kiln/conn"
	"github.com/kilnhttp/kiln/pkg/kiln/listener"
)

// ListenAddress is one configured listen endpoint, decoded from a
// "host:port" string plus an optional protocol tag (default "http").
type ListenAddress struct {
	Address  string `mapstructure:"address"`
	Protocol string `mapstructure:"protocol"`
}

// Config is the full set of options the server accepts.
type Config struct {
	MaxHeaderSize        int             `mapstructure:"max_header_size"`
	MaxBodySize          int64           `mapstructure:"max_body_size"`
	HeaderReadTimeout    time.Duration   `mapstructure:"header_read_timeout"`
	BodyReadTimeout      time.Duration   `mapstructure:"body_read_timeout"`
	WriteTimeout         time.Duration   `mapstructure:"write_timeout"`
	Workers              int             `mapstructure:"workers"`
	ConnectionsPerWorker int             `mapstructure:"connections_per_worker"`
	ListenAddresses      []ListenAddress `mapstructure:"listen_addresses"`

	// MetricsEnabled and LogLevel are ambient options this expansion
	// adds: whether to register the optional prometheus collectors,
	// and the zap level the structured logger starts at.
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	LogLevel       string `mapstructure:"log_level"`
}

// Default returns the package defaults, before any
// user-supplied source is decoded over them.
func Default() Config {
	return Config{
		MaxHeaderSize:        8192,
		MaxBodySize:          1048576,
		HeaderReadTimeout:    60 * time.Second,
		BodyReadTimeout:      60 * time.Second,
		WriteTimeout:         60 * time.Second,
		Workers:              runtime.GOMAXPROCS(0),
		ConnectionsPerWorker: 64,
		ListenAddresses:      []ListenAddress{{Address: ":8080", Protocol: "http"}},
		MetricsEnabled:       false,
		LogLevel:             "info",
	}
}

// Load decodes source (typically the result of unmarshalling a YAML or
// JSON config file into map[string]interface{}) onto a copy of the
// defaults, using mapstructure's duration-string decode hook so
// "60s"-style values in the source parse straight into time.Duration
// fields.
func Load(source interface{}) (Config, error) {
	cfg := Default()

	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		Result:           &cfg,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return Config{}, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(source); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// ConnLimits projects the size/timeout fields onto conn.Limits.
func (c Config) ConnLimits() conn.Limits {
	return conn.Limits{
		MaxHeaderSize:     c.MaxHeaderSize,
		MaxBodySize:       c.MaxBodySize,
		HeaderReadTimeout: c.HeaderReadTimeout,
		BodyReadTimeout:   c.BodyReadTimeout,
		WriteTimeout:      c.WriteTimeout,
	}
}

// Endpoints projects ListenAddresses onto listener.Endpoint values.
func (c Config) Endpoints() []listener.Endpoint {
	endpoints := make([]listener.Endpoint, len(c.ListenAddresses))
	for i, a := range c.ListenAddresses {
		protocol := listener.ProtocolHTTP
		if a.Protocol != "" {
			protocol = listener.Protocol(a.Protocol)
		}
		endpoints[i] = listener.Endpoint{Address: a.Address, Protocol: protocol}
	}
	return endpoints
}
