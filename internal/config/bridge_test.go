package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadBridgeConfig(t *testing.T) {
	path := writeConfig(t, "bridge.json", `{
		"listen": ":8090",
		"osc_listen": ":9100",
		"serial_port": "/dev/ttyUSB0",
		"serial_baud_rate": 9600,
		"fps": 60,
		"buffer_limit": 1024,
		"history_size": 300,
		"forward_url": "http://visual-host:9100/frame",
		"forward_timeout": "5s",
		"log_interval": "30s"
	}`)

	cfg, err := LoadBridgeConfig(path)
	if err != nil {
		t.Fatalf("LoadBridgeConfig: %v", err)
	}

	if got := cfg.GetListen(); got != ":8090" {
		t.Errorf("GetListen() = %q", got)
	}
	if got := cfg.GetOSCListen(); got != ":9100" {
		t.Errorf("GetOSCListen() = %q", got)
	}
	if got := cfg.GetSerialPort(); got != "/dev/ttyUSB0" {
		t.Errorf("GetSerialPort() = %q", got)
	}
	if got := cfg.GetSerialBaudRate(); got != 9600 {
		t.Errorf("GetSerialBaudRate() = %d", got)
	}
	if got := cfg.GetFPS(); got != 60 {
		t.Errorf("GetFPS() = %v", got)
	}
	if got := cfg.GetBufferLimit(); got != 1024 {
		t.Errorf("GetBufferLimit() = %d", got)
	}
	if got := cfg.GetHistorySize(); got != 300 {
		t.Errorf("GetHistorySize() = %d", got)
	}
	if got := cfg.GetForwardURL(); got != "http://visual-host:9100/frame" {
		t.Errorf("GetForwardURL() = %q", got)
	}
	if got := cfg.GetForwardTimeout(); got != 5*time.Second {
		t.Errorf("GetForwardTimeout() = %v", got)
	}
	if got := cfg.GetLogInterval(); got != 30*time.Second {
		t.Errorf("GetLogInterval() = %v", got)
	}
}

func TestDefaults(t *testing.T) {
	cfg := EmptyBridgeConfig()

	if got := cfg.GetListen(); got != ":8080" {
		t.Errorf("GetListen() = %q, want :8080", got)
	}
	if got := cfg.GetOSCListen(); got != ":9000" {
		t.Errorf("GetOSCListen() = %q, want :9000", got)
	}
	if got := cfg.GetOSCRcvBuf(); got != 1<<20 {
		t.Errorf("GetOSCRcvBuf() = %d, want %d", got, 1<<20)
	}
	if got := cfg.GetSerialPort(); got != "" {
		t.Errorf("GetSerialPort() = %q, want empty", got)
	}
	if got := cfg.GetFPS(); got != 30 {
		t.Errorf("GetFPS() = %v, want 30", got)
	}
	if got := cfg.GetBufferLimit(); got != 4096 {
		t.Errorf("GetBufferLimit() = %d, want 4096", got)
	}
	if got := cfg.GetHistorySize(); got != 600 {
		t.Errorf("GetHistorySize() = %d, want 600", got)
	}
	if got := cfg.GetForwardTimeout(); got != 2*time.Second {
		t.Errorf("GetForwardTimeout() = %v, want 2s", got)
	}
	if got := cfg.GetLogInterval(); got != time.Minute {
		t.Errorf("GetLogInterval() = %v, want 1m", got)
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := EmptyBridgeConfig()
	if got := cfg.FrameInterval(); got != time.Second/30 {
		t.Errorf("FrameInterval() = %v, want %v", got, time.Second/30)
	}

	fps := 10.0
	cfg.FPS = &fps
	if got := cfg.FrameInterval(); got != 100*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 100ms", got)
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"fps": 15}`)
	cfg, err := LoadBridgeConfig(path)
	if err != nil {
		t.Fatalf("LoadBridgeConfig: %v", err)
	}
	if got := cfg.GetFPS(); got != 15 {
		t.Errorf("GetFPS() = %v, want 15", got)
	}
	if got := cfg.GetListen(); got != ":8080" {
		t.Errorf("GetListen() = %q, want default", got)
	}
}

func TestLoadBridgeConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{
			name:    "wrong extension",
			path:    writeConfig(t, "bridge.yaml", `{}`),
			wantErr: ".json extension",
		},
		{
			name:    "missing file",
			path:    filepath.Join(t.TempDir(), "missing.json"),
			wantErr: "stat",
		},
		{
			name:    "malformed json",
			path:    writeConfig(t, "bad.json", `{"fps": `),
			wantErr: "parse",
		},
		{
			name:    "invalid fps",
			path:    writeBridgeJSON(t, `{"fps": -1}`),
			wantErr: "fps",
		},
		{
			name:    "invalid forward timeout",
			path:    writeBridgeJSON(t, `{"forward_timeout": "soon"}`),
			wantErr: "forward_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBridgeConfig(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func writeBridgeJSON(t *testing.T, content string) string {
	t.Helper()
	return writeConfig(t, "bridge.json", content)
}

func TestValidate(t *testing.T) {
	bad := -1
	cfg := EmptyBridgeConfig()
	cfg.BufferLimit = &bad
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative buffer_limit")
	}

	cfg = EmptyBridgeConfig()
	cfg.HistorySize = &bad
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative history_size")
	}

	fps := 500.0
	cfg = EmptyBridgeConfig()
	cfg.FPS = &fps
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for fps over cap")
	}

	interval := "whenever"
	cfg = EmptyBridgeConfig()
	cfg.LogInterval = &interval
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad log_interval")
	}

	if err := EmptyBridgeConfig().Validate(); err != nil {
		t.Errorf("empty config should validate, got %v", err)
	}
}
