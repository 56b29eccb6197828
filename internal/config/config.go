package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the application.
type Config struct {
	Printer  Printer
	Panel    Panel
	Input    Input
	Media    Media
	Caps     Capabilities
	Logging  Logging
	SelfTest bool
	Print    string
	Flags    map[string]string
	Args     []string
}

// Printer selects the command sink. An empty Port runs the simulator.
type Printer struct {
	Port string
	Baud int
	Poll time.Duration
}

// Panel controls the display and the dispatcher cadence.
type Panel struct {
	Display        string
	FramebufferDev string
	Tick           time.Duration
	StatusInterval time.Duration
}

// Input selects the encoder source.
type Input struct {
	Encoder string
	PinA    string
	PinB    string
	Button  string
}

// Media locates the SD stand-in and the settings document.
type Media struct {
	Dir          string
	SettingsPath string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// Capabilities replaces the firmware's compile-time feature switches. Menus
// and rows a machine lacks are never registered.
type Capabilities struct {
	Extruders    int
	Mixing       bool
	Probe        bool
	Runout       bool
	WiFi         bool
	Reprint      bool
	PowerLoss    bool
	AutoShutdown bool
	FWRetract    bool
}

// Hotends returns the number of independently heated nozzles. A mixing head
// has several extruder steppers but a single hotend.
func (c Capabilities) Hotends() int {
	if c.Mixing || c.Extruders < 1 {
		return 1
	}
	return c.Extruders
}

// Full enables every optional feature, used by tests that walk all screens.
func Full() Capabilities {
	return Capabilities{
		Extruders:    3,
		Mixing:       true,
		Probe:        true,
		Runout:       true,
		WiFi:         true,
		Reprint:      true,
		PowerLoss:    true,
		AutoShutdown: true,
		FWRetract:    true,
	}
}

const (
	DisplayTerminal    = "terminal"
	DisplayFramebuffer = "framebuffer"
	EncoderKeys        = "keys"
	EncoderGPIO        = "gpio"
)

const (
	envPort           = "DWIN_PANEL_PORT"
	envBaud           = "DWIN_PANEL_BAUD"
	envTick           = "DWIN_PANEL_TICK"
	envStatusInterval = "DWIN_PANEL_STATUS_INTERVAL"
	envPoll           = "DWIN_PANEL_POLL"
	envMedia          = "DWIN_PANEL_MEDIA"
	envSettings       = "DWIN_PANEL_SETTINGS"
	envDisplay        = "DWIN_PANEL_DISPLAY"
	envFBDevice       = "DWIN_PANEL_FB_DEVICE"
	envEncoder        = "DWIN_PANEL_ENCODER"
	envGPIOA          = "DWIN_PANEL_GPIO_A"
	envGPIOB          = "DWIN_PANEL_GPIO_B"
	envGPIOButton     = "DWIN_PANEL_GPIO_BUTTON"
	envPrint          = "DWIN_PANEL_PRINT"
	envExtruders      = "DWIN_PANEL_EXTRUDERS"
	envMixing         = "DWIN_PANEL_MIXING"
	envProbe          = "DWIN_PANEL_PROBE"
	envRunout         = "DWIN_PANEL_RUNOUT"
	envWiFi           = "DWIN_PANEL_WIFI"
	envReprint        = "DWIN_PANEL_REPRINT"
	envPowerLoss      = "DWIN_PANEL_POWER_LOSS"
	envAutoShutdown   = "DWIN_PANEL_AUTOSHUTDOWN"
	envFWRetract      = "DWIN_PANEL_FWRETRACT"
	envSelfTest       = "DWIN_PANEL_SELF_TEST"
	envTrace          = "DWIN_PANEL_TRACE"
	envLogFile        = "DWIN_PANEL_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("dwin-panel", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	port := fs.String("port", envOrDefault(env, envPort, ""), "serial device of the printer (empty runs the simulator)")
	baud := fs.Int("baud", envOrInt(env, envBaud, 115200), "serial baud rate")
	tick := fs.Duration("tick", envOrDuration(env, envTick, 50*time.Millisecond), "dispatcher period")
	statusInterval := fs.Duration("status-interval", envOrDuration(env, envStatusInterval, time.Second), "status area refresh period")
	poll := fs.Duration("poll", envOrDuration(env, envPoll, time.Second), "printer status poll interval")
	mediaDir := fs.String("media", envOrDefault(env, envMedia, "media"), "directory standing in for the SD card")
	settingsPath := fs.String("settings", envOrDefault(env, envSettings, "dwin-panel.json"), "path to the settings document")
	display := fs.String("display", envOrDefault(env, envDisplay, DisplayTerminal), "display backend: terminal or framebuffer")
	fbDevice := fs.String("fb-device", envOrDefault(env, envFBDevice, "/dev/fb0"), "framebuffer device")
	encoder := fs.String("encoder", envOrDefault(env, envEncoder, EncoderKeys), "encoder source: keys or gpio")
	pinA := fs.String("gpio-a", envOrDefault(env, envGPIOA, "GPIO17"), "encoder channel A pin")
	pinB := fs.String("gpio-b", envOrDefault(env, envGPIOB, "GPIO27"), "encoder channel B pin")
	button := fs.String("gpio-button", envOrDefault(env, envGPIOButton, "GPIO22"), "encoder push button pin")
	printFile := fs.String("print", envOrDefault(env, envPrint, ""), "file to start printing at boot (fuzzy match)")
	extruders := fs.Int("extruders", envOrInt(env, envExtruders, 1), "number of extruder steppers")
	mixing := fs.Bool("mixing", envOrBool(env, envMixing, false), "extruders feed one mixing nozzle")
	probe := fs.Bool("probe", envOrBool(env, envProbe, false), "machine has a bed probe")
	runout := fs.Bool("runout", envOrBool(env, envRunout, false), "machine has a filament runout sensor")
	wifi := fs.Bool("wifi", envOrBool(env, envWiFi, false), "machine has a Wi-Fi module")
	reprint := fs.Bool("reprint", envOrBool(env, envReprint, false), "enable repeat printing")
	powerLoss := fs.Bool("power-loss", envOrBool(env, envPowerLoss, false), "enable power-loss recovery")
	autoShutdown := fs.Bool("autoshutdown", envOrBool(env, envAutoShutdown, false), "enable idle power-off")
	fwRetract := fs.Bool("fwretract", envOrBool(env, envFWRetract, false), "enable firmware retraction settings")
	selfTest := fs.Bool("self-test", envOrBool(env, envSelfTest, false), "run the factory self-test at boot")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *baud <= 0 {
		return Config{}, fmt.Errorf("baud must be > 0 (got %d)", *baud)
	}
	if *tick <= 0 {
		return Config{}, fmt.Errorf("tick must be > 0 (got %s)", *tick)
	}
	if *statusInterval < *tick {
		return Config{}, fmt.Errorf("status-interval must be >= tick (got %s < %s)", *statusInterval, *tick)
	}
	if *extruders < 1 {
		return Config{}, fmt.Errorf("extruders must be >= 1 (got %d)", *extruders)
	}

	cfg := Config{
		Printer: Printer{
			Port: *port,
			Baud: *baud,
			Poll: *poll,
		},
		Panel: Panel{
			Display:        *display,
			FramebufferDev: *fbDevice,
			Tick:           *tick,
			StatusInterval: *statusInterval,
		},
		Input: Input{
			Encoder: *encoder,
			PinA:    *pinA,
			PinB:    *pinB,
			Button:  *button,
		},
		Media: Media{
			Dir:          *mediaDir,
			SettingsPath: *settingsPath,
		},
		Caps: Capabilities{
			Extruders:    *extruders,
			Mixing:       *mixing,
			Probe:        *probe,
			Runout:       *runout,
			WiFi:         *wifi,
			Reprint:      *reprint,
			PowerLoss:    *powerLoss,
			AutoShutdown: *autoShutdown,
			FWRetract:    *fwRetract,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		SelfTest: *selfTest,
		Print:    *printFile,
		Flags: map[string]string{
			"port":           *port,
			"baud":           strconv.Itoa(*baud),
			"tick":           tick.String(),
			"statusInterval": statusInterval.String(),
			"poll":           poll.String(),
			"media":          *mediaDir,
			"settings":       *settingsPath,
			"display":        *display,
			"fbDevice":       *fbDevice,
			"encoder":        *encoder,
			"print":          *printFile,
			"extruders":      strconv.Itoa(*extruders),
			"selfTest":       strconv.FormatBool(*selfTest),
			"trace":          strconv.FormatBool(*trace),
			"logFile":        *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// StatusTicks converts the status interval into dispatcher ticks.
func (c Config) StatusTicks() int {
	if c.Panel.Tick <= 0 {
		return 1
	}
	n := int(c.Panel.StatusInterval / c.Panel.Tick)
	if n < 1 {
		return 1
	}
	return n
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks the combinations LoadArgs cannot judge flag by flag.
func Validate(cfg Config) error {
	switch cfg.Panel.Display {
	case DisplayTerminal, DisplayFramebuffer:
	default:
		return fmt.Errorf("unknown display %q", cfg.Panel.Display)
	}
	switch cfg.Input.Encoder {
	case EncoderKeys, EncoderGPIO:
	default:
		return fmt.Errorf("unknown encoder %q", cfg.Input.Encoder)
	}
	if cfg.Panel.Display == DisplayFramebuffer && cfg.Input.Encoder == EncoderKeys {
		return fmt.Errorf("framebuffer display needs the gpio encoder")
	}
	if cfg.Caps.Mixing && cfg.Caps.Extruders < 2 {
		return fmt.Errorf("mixing needs at least 2 extruders (got %d)", cfg.Caps.Extruders)
	}
	return nil
}
