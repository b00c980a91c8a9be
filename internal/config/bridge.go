// Package config loads the bridge's JSON configuration file. Fields are
// pointer-typed so a partial config only overrides what it names; the Get*
// accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BridgeConfig represents the root configuration for the bridge daemon. The
// schema matches the flag surface of cmd/bridge so the same deployment can
// be driven by either.
type BridgeConfig struct {
	// HTTP server params
	Listen *string `json:"listen,omitempty"`

	// OSC/UDP row source params
	OSCListen *string `json:"osc_listen,omitempty"`
	OSCRcvBuf *int    `json:"osc_rcvbuf,omitempty"`

	// Serial row bridge params
	SerialPort     *string `json:"serial_port,omitempty"`
	SerialBaudRate *int    `json:"serial_baud_rate,omitempty"`
	SerialDataBits *int    `json:"serial_data_bits,omitempty"`
	SerialStopBits *int    `json:"serial_stop_bits,omitempty"`
	SerialParity   *string `json:"serial_parity,omitempty"`

	// Frame loop params
	FPS         *float64 `json:"fps,omitempty"`
	BufferLimit *int     `json:"buffer_limit,omitempty"`

	// Monitor params
	HistorySize *int `json:"history_size,omitempty"`

	// Forwarding params
	ForwardURL     *string `json:"forward_url,omitempty"`
	ForwardTimeout *string `json:"forward_timeout,omitempty"` // duration string like "2s"

	// Stats params
	LogInterval *string `json:"log_interval,omitempty"` // duration string like "60s"
}

// EmptyBridgeConfig returns a BridgeConfig with all fields set to nil.
func EmptyBridgeConfig() *BridgeConfig {
	return &BridgeConfig{}
}

// LoadBridgeConfig loads a BridgeConfig from a JSON file. The file must have
// a .json extension and stay under the max file size. Fields omitted from
// the JSON retain their defaults, so partial configs are safe.
func LoadBridgeConfig(path string) (*BridgeConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBridgeConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *BridgeConfig) Validate() error {
	if c.FPS != nil {
		if *c.FPS <= 0 || *c.FPS > 240 {
			return fmt.Errorf("fps must be between 0 and 240, got %f", *c.FPS)
		}
	}

	if c.BufferLimit != nil && *c.BufferLimit < 0 {
		return fmt.Errorf("buffer_limit must be non-negative, got %d", *c.BufferLimit)
	}

	if c.HistorySize != nil && *c.HistorySize < 0 {
		return fmt.Errorf("history_size must be non-negative, got %d", *c.HistorySize)
	}

	if c.ForwardTimeout != nil && *c.ForwardTimeout != "" {
		if _, err := time.ParseDuration(*c.ForwardTimeout); err != nil {
			return fmt.Errorf("invalid forward_timeout '%s': %w", *c.ForwardTimeout, err)
		}
	}

	if c.LogInterval != nil && *c.LogInterval != "" {
		if _, err := time.ParseDuration(*c.LogInterval); err != nil {
			return fmt.Errorf("invalid log_interval '%s': %w", *c.LogInterval, err)
		}
	}

	return nil
}

// GetListen returns the HTTP listen address or the default.
func (c *BridgeConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetOSCListen returns the UDP listen address for OSC rows or the default.
func (c *BridgeConfig) GetOSCListen() string {
	if c.OSCListen == nil || *c.OSCListen == "" {
		return ":9000"
	}
	return *c.OSCListen
}

// GetOSCRcvBuf returns the UDP receive buffer size or the default.
func (c *BridgeConfig) GetOSCRcvBuf() int {
	if c.OSCRcvBuf == nil || *c.OSCRcvBuf <= 0 {
		return 1 << 20
	}
	return *c.OSCRcvBuf
}

// GetSerialPort returns the serial port path, empty when no bridge attached.
func (c *BridgeConfig) GetSerialPort() string {
	if c.SerialPort == nil {
		return ""
	}
	return *c.SerialPort
}

// GetFPS returns the frame rate or the default.
func (c *BridgeConfig) GetFPS() float64 {
	if c.FPS == nil || *c.FPS <= 0 {
		return 30
	}
	return *c.FPS
}

// FrameInterval returns the frame ticker interval derived from FPS.
func (c *BridgeConfig) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.GetFPS())
}

// GetBufferLimit returns the row buffer limit or the default.
func (c *BridgeConfig) GetBufferLimit() int {
	if c.BufferLimit == nil || *c.BufferLimit <= 0 {
		return 4096
	}
	return *c.BufferLimit
}

// GetHistorySize returns the monitor ring capacity or the default.
func (c *BridgeConfig) GetHistorySize() int {
	if c.HistorySize == nil || *c.HistorySize <= 0 {
		return 600
	}
	return *c.HistorySize
}

// GetForwardURL returns the downstream URL, empty when forwarding disabled.
func (c *BridgeConfig) GetForwardURL() string {
	if c.ForwardURL == nil {
		return ""
	}
	return *c.ForwardURL
}

// GetForwardTimeout parses and returns the forward timeout.
func (c *BridgeConfig) GetForwardTimeout() time.Duration {
	if c.ForwardTimeout == nil || *c.ForwardTimeout == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(*c.ForwardTimeout)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GetLogInterval parses and returns the stats log interval.
func (c *BridgeConfig) GetLogInterval() time.Duration {
	if c.LogInterval == nil || *c.LogInterval == "" {
		return time.Minute
	}
	d, err := time.ParseDuration(*c.LogInterval)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetSerialBaudRate returns the serial baud rate, zero meaning defaulted.
func (c *BridgeConfig) GetSerialBaudRate() int {
	if c.SerialBaudRate == nil {
		return 0
	}
	return *c.SerialBaudRate
}

// GetSerialDataBits returns the serial data bits, zero meaning defaulted.
func (c *BridgeConfig) GetSerialDataBits() int {
	if c.SerialDataBits == nil {
		return 0
	}
	return *c.SerialDataBits
}

// GetSerialStopBits returns the serial stop bits, zero meaning defaulted.
func (c *BridgeConfig) GetSerialStopBits() int {
	if c.SerialStopBits == nil {
		return 0
	}
	return *c.SerialStopBits
}

// GetSerialParity returns the serial parity, empty meaning defaulted.
func (c *BridgeConfig) GetSerialParity() string {
	if c.SerialParity == nil {
		return ""
	}
	return *c.SerialParity
}
