// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/joe/sync-onboard/internal/decide"
	"github.com/joe/sync-onboard/pkg/filesystem"
)

// APIKeyEnv names the environment variable consulted when no api key argument is given.
const APIKeyEnv = "SYNC_ONBOARD_API_KEY"

// Validation errors.
var (
	ErrSourceMissing   = errors.New("source path does not exist")
	ErrSourceNotDir    = errors.New("source path is not a directory")
	ErrEmptyExtension  = errors.New("extension must not be empty")
	ErrInvalidBaud     = errors.New("baud rate must be positive")
	ErrInvalidDebounce = errors.New("debounce must be positive")
	ErrInvalidRemote   = errors.New("remote endpoint must be an http or https URL")
)

// Config holds the application configuration.
type Config struct {
	SourcePath string `arg:"positional" help:"Source directory to watch [default: .]"`
	DestPath   string `arg:"positional" help:"Destination directory: SD card mount, drive, or sftp://user@host/path"`
	SerialPort string `arg:"positional" help:"Printer serial port used to release the card"`
	APIKey     string `arg:"positional" help:"Printer host API key (or $SYNC_ONBOARD_API_KEY)"`

	Extension string            `arg:"-e,--extension" default:"gcode" help:"Extension of the files to mirror"`
	Marker    string            `arg:"--marker" default:"firmware.cur" help:"File that must exist exactly once on a ready card"`
	Remote    map[string]string `arg:"--remote,separate" help:"KEY=URL release endpoint for a drive letter, mount path or SFTP host"`
	Baud      int               `arg:"--baud" default:"250000" help:"Serial baud rate"`

	Policy   decide.Policy `arg:"--policy" default:"newer" help:"Conflict policy: newer|different"`
	Debounce time.Duration `arg:"--debounce" default:"500ms" help:"Quiet period before a changed file is synced"`

	LogFile string `arg:"--log-file" help:"Also write JSON logs to this file (rotated)"`
	Verbose bool   `arg:"-v,--verbose" help:"Log debug output"`
	NoColor bool   `arg:"--no-color" help:"Disable colored output"`
}

// Description returns the program description for go-arg.
func (Config) Description() string {
	return "Mirrors sliced print files from a source tree onto a printer's SD card, " +
		"asking the printer to release the card whenever it is not writable."
}

// Version returns the version string for go-arg.
func (Config) Version() string {
	return "sync-onboard 1.0.0"
}

// ParseFlags parses the process arguments and returns configuration.
func ParseFlags() (*Config, error) {
	cfg := newConfig()

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// ParseArgs parses args (without the program name). It returns arg.ErrHelp
// and arg.ErrVersion unchanged so callers can print usage.
func ParseArgs(args []string) (*Config, error) {
	cfg := newConfig()

	parser, err := arg.NewParser(arg.Config{Program: "sync-onboard"}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument parser: %w", err)
	}

	if err := parser.Parse(args); err != nil {
		return nil, err
	}

	return PostProcessConfig(cfg)
}

// PostProcessConfig fills platform defaults and validates a parsed config.
func PostProcessConfig(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults(runtime.GOOS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills omitted arguments with the defaults for goos.
func (cfg *Config) ApplyDefaults(goos string) {
	if cfg.SourcePath == "" {
		cfg.SourcePath = "."
	}

	if cfg.DestPath == "" {
		cfg.DestPath = DefaultDestination(goos)
	}

	if cfg.SerialPort == "" {
		cfg.SerialPort = DefaultSerialPort(goos)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}

	cfg.Extension = strings.TrimPrefix(strings.TrimSpace(cfg.Extension), ".")
}

// Validate checks the source and the optional settings. The destination
// only has to be well formed: a card that is not inserted yet is normal.
func (cfg *Config) Validate() error {
	sourceInfo, err := os.Stat(cfg.SourcePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, cfg.SourcePath)
	}

	if err != nil {
		return fmt.Errorf("cannot access source path: %w", err)
	}

	if !sourceInfo.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceNotDir, cfg.SourcePath)
	}

	if _, err := filesystem.ParsePath(cfg.DestPath); err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}

	if cfg.Extension == "" {
		return ErrEmptyExtension
	}

	if cfg.Baud <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaud, cfg.Baud)
	}

	if cfg.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, cfg.Debounce)
	}

	for key, endpoint := range cfg.Remote {
		parsed, err := url.Parse(endpoint)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %s=%s", ErrInvalidRemote, key, endpoint)
		}
	}

	return nil
}

// DefaultDestination is the card location used when none is given.
func DefaultDestination(goos string) string {
	if goos == "windows" {
		return `H:\`
	}

	return "/media/sdcard"
}

// DefaultSerialPort is the printer port used when none is given.
func DefaultSerialPort(goos string) string {
	if goos == "windows" {
		return "COM6"
	}

	return "/dev/ttyUSB0"
}

func newConfig() *Config {
	return &Config{
		Extension: "gcode",
		Marker:    "firmware.cur",
		Baud:      250000,
		Policy:    decide.PolicyNewerWins,
		Debounce:  500 * time.Millisecond,
	}
}
