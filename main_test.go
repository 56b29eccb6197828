package main

import (
	"path/filepath"
	"testing"

	"github.com/atomicstack/dwin-panel/internal/config"
	"github.com/atomicstack/dwin-panel/internal/logging"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg, err := config.LoadArgs([]string{"--port", "/dev/ttyUSB0", "--extruders", "2", "--trace", "--log-file", "trace.log"}, nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	payload := startupTracePayload(cfg, ttyDetails{})

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["port"] != "/dev/ttyUSB0" {
		t.Fatalf("expected port flag, got %v", flagsValue["port"])
	}
	if flagsValue["extruders"] != "2" {
		t.Fatalf("expected extruders 2, got %v", flagsValue["extruders"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	caps, ok := payload["caps"].(config.Capabilities)
	if !ok || caps.Extruders != 2 {
		t.Fatalf("expected capabilities in payload, got %#v", payload["caps"])
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.Printer != cfg.Printer {
		t.Fatalf("expected printer config %#v, got %#v", cfg.Printer, cfgValue.Printer)
	}
}

func TestCheckDisplay(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "panel.log"))
	terminal := config.Config{Panel: config.Panel{Display: config.DisplayTerminal}}
	if err := checkDisplay(terminal, ttyDetails{}); err == nil {
		t.Fatalf("expected terminal display without a tty to fail")
	}
	small := ttyDetails{Detected: &ttyDetected{Source: "stdout", Width: 20, Height: 10}}
	if err := checkDisplay(terminal, small); err != nil {
		t.Fatalf("a small terminal should only warn, got %v", err)
	}
	fb := config.Config{Panel: config.Panel{Display: config.DisplayFramebuffer}}
	if err := checkDisplay(fb, ttyDetails{}); err != nil {
		t.Fatalf("framebuffer display needs no tty, got %v", err)
	}
}
