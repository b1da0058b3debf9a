// Package config builds the run configuration.
//
// Values are layered, later layers winning:
//  1. built-in defaults
//  2. YAML file from --config or $NETRAPTOR_CONFIG
//  3. NETRAPTOR_* environment variables
//  4. command line flags
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// Report formats accepted by --output.
var outputFormats = []string{"json", "html", "pdf", "both", "all"}

const envPrefix = "NETRAPTOR_"

// ToolPaths overrides the binaries invoked for each external tool.
type ToolPaths struct {
	Reaver   string `yaml:"reaver"`
	Aircrack string `yaml:"aircrack"`
	Airodump string `yaml:"airodump"`
	Aireplay string `yaml:"aireplay"`
	Airmon   string `yaml:"airmon"`
	Iwlist   string `yaml:"iwlist"`
	Iwconfig string `yaml:"iwconfig"`
	Wash     string `yaml:"wash"`
}

// Binaries maps each default binary name to its configured path.
func (t ToolPaths) Binaries() map[string]string {
	return map[string]string{
		"reaver":      t.Reaver,
		"aircrack-ng": t.Aircrack,
		"airodump-ng": t.Airodump,
		"aireplay-ng": t.Aireplay,
		"airmon-ng":   t.Airmon,
		"iwlist":      t.Iwlist,
		"iwconfig":    t.Iwconfig,
		"wash":        t.Wash,
	}
}

// Config holds all application configuration.
type Config struct {
	Interface string `yaml:"interface"`
	Timeout   int    `yaml:"timeout"` // scan seconds

	// Feature flags
	Scan           bool   `yaml:"scan"`
	WPAAudit       bool   `yaml:"wpa_audit"`
	WPSTest        bool   `yaml:"wps_test"`
	WPSAttack      string `yaml:"wps_attack"`
	Deauth         string `yaml:"deauth"`
	Handshake      string `yaml:"handshake"`
	CrackHandshake string `yaml:"crack_handshake"`
	EvilTwin       bool   `yaml:"evil_twin"`
	Bluetooth      bool   `yaml:"bluetooth"`
	InjectionTest  bool   `yaml:"injection_test"`
	MonitorOnly    bool   `yaml:"monitor_only"`

	Channel     int           `yaml:"channel"`
	Wordlist    string        `yaml:"wordlist"`
	Output      string        `yaml:"output"`
	OutputDir   string        `yaml:"output_dir"`
	DeauthCount int           `yaml:"deauth_count"`
	WPSCeiling  time.Duration `yaml:"wps_ceiling"`
	Tools       ToolPaths     `yaml:"tools"`

	DBPath     string `yaml:"db"`
	StatusAddr string `yaml:"status_addr"`
	GRPCAddr   string `yaml:"grpc_addr"`

	Trace     bool   `yaml:"trace"`
	LogFormat string `yaml:"log_format"`
	Verbose   bool   `yaml:"verbose"`

	// ConfigPath is the file the YAML layer came from, if any.
	ConfigPath string `yaml:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Timeout:     30,
		Wordlist:    "/usr/share/wordlists/rockyou.txt",
		Output:      "both",
		OutputDir:   ".",
		DeauthCount: domain.DefaultDeauthCount,
		WPSCeiling:  domain.DefaultWPSCeiling,
		LogFormat:   "json",
		Tools: ToolPaths{
			Reaver:   "reaver",
			Aircrack: "aircrack-ng",
			Airodump: "airodump-ng",
			Aireplay: "aireplay-ng",
			Airmon:   "airmon-ng",
			Iwlist:   "iwlist",
			Iwconfig: "iwconfig",
			Wash:     "wash",
		},
	}
}

// Load parses os.Args and the process environment.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:], os.Getenv)
}

// LoadArgs builds a Config from args and getenv. It returns flag.ErrHelp
// when help was requested. The result is not validated.
func LoadArgs(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	path := configPath(args)
	if path == "" {
		path = getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	fs := cfg.flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return cfg, nil
}

// Usage prints the flag summary to w.
func Usage(w io.Writer) {
	fs := Default().flagSet()
	fs.SetOutput(w)
	fmt.Fprintln(w, "Usage: netraptor [options] <feature flags>")
	fs.PrintDefaults()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.ConfigPath = path
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	str("INTERFACE", &c.Interface)
	str("WORDLIST", &c.Wordlist)
	str("OUTPUT", &c.Output)
	str("OUTPUT_DIR", &c.OutputDir)
	str("DB", &c.DBPath)
	str("STATUS_ADDR", &c.StatusAddr)
	str("GRPC_ADDR", &c.GRPCAddr)
	str("LOG_FORMAT", &c.LogFormat)
	str("REAVER_PATH", &c.Tools.Reaver)
	str("AIRCRACK_PATH", &c.Tools.Aircrack)

	for key, dst := range map[string]*int{"TIMEOUT": &c.Timeout, "CHANNEL": &c.Channel, "DEAUTH_COUNT": &c.DeauthCount} {
		if v := getenv(envPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*bool{"TRACE": &c.Trace, "VERBOSE": &c.Verbose} {
		if v := getenv(envPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, key, err)
			}
			*dst = b
		}
	}
	if v := getenv(envPrefix + "WPS_CEILING"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWPS_CEILING: %w", envPrefix, err)
		}
		c.WPSCeiling = d
	}
	return nil
}

func (c *Config) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("netraptor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var unused string
	fs.StringVar(&unused, "config", c.ConfigPath, "Path to a YAML configuration file")

	fs.StringVar(&c.Interface, "i", c.Interface, "Wireless interface (default: first discovered)")
	fs.StringVar(&c.Interface, "interface", c.Interface, "Wireless interface")
	fs.IntVar(&c.Timeout, "t", c.Timeout, "Scan timeout in seconds")
	fs.IntVar(&c.Timeout, "timeout", c.Timeout, "Scan timeout in seconds")

	fs.BoolVar(&c.Scan, "scan", c.Scan, "Basic wireless network discovery")
	fs.BoolVar(&c.WPAAudit, "wpa-audit", c.WPAAudit, "WPA/WPA2 security audit")
	fs.BoolVar(&c.WPSTest, "wps-test", c.WPSTest, "WPS discovery")
	fs.StringVar(&c.WPSAttack, "wps-attack", c.WPSAttack, "WPS PIN brute force against `BSSID`")
	fs.StringVar(&c.Deauth, "deauth", c.Deauth, "Deauthenticate clients of `BSSID`")
	fs.StringVar(&c.Handshake, "handshake", c.Handshake, "Capture a handshake from `BSSID`")
	fs.StringVar(&c.CrackHandshake, "crack-handshake", c.CrackHandshake, "Crack a capture `file` with the wordlist")
	fs.BoolVar(&c.EvilTwin, "evil-twin", c.EvilTwin, "Detect evil twin access points")
	fs.BoolVar(&c.Bluetooth, "bluetooth", c.Bluetooth, "Bluetooth device discovery")
	fs.BoolVar(&c.InjectionTest, "injection-test", c.InjectionTest, "Test packet injection")
	fs.BoolVar(&c.MonitorOnly, "monitor-only", c.MonitorOnly, "Enable monitor mode and exit")

	fs.IntVar(&c.Channel, "channel", c.Channel, "Target channel for attacks")
	fs.StringVar(&c.Wordlist, "wordlist", c.Wordlist, "Wordlist for handshake cracking")
	fs.StringVar(&c.Output, "output", c.Output, "Report format: "+strings.Join(outputFormats, "|"))
	fs.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "Directory for reports and attack artifacts")
	fs.IntVar(&c.DeauthCount, "deauth-count", c.DeauthCount, "Deauthentication frames per run")
	fs.DurationVar(&c.WPSCeiling, "wps-ceiling", c.WPSCeiling, "Wall-clock limit of a WPS attack")

	fs.StringVar(&c.Tools.Reaver, "reaver-path", c.Tools.Reaver, "Path to reaver binary")
	fs.StringVar(&c.Tools.Aircrack, "aircrack-path", c.Tools.Aircrack, "Path to aircrack-ng binary")
	fs.StringVar(&c.Tools.Airodump, "airodump-path", c.Tools.Airodump, "Path to airodump-ng binary")
	fs.StringVar(&c.Tools.Aireplay, "aireplay-path", c.Tools.Aireplay, "Path to aireplay-ng binary")
	fs.StringVar(&c.Tools.Airmon, "airmon-path", c.Tools.Airmon, "Path to airmon-ng binary")
	fs.StringVar(&c.Tools.Iwlist, "iwlist-path", c.Tools.Iwlist, "Path to iwlist binary")
	fs.StringVar(&c.Tools.Iwconfig, "iwconfig-path", c.Tools.Iwconfig, "Path to iwconfig binary")
	fs.StringVar(&c.Tools.Wash, "wash-path", c.Tools.Wash, "Path to wash binary")

	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite session history (empty to disable)")
	fs.StringVar(&c.StatusAddr, "status-addr", c.StatusAddr, "Status server address (empty to disable)")
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "gRPC health address (empty to disable)")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "Write OpenTelemetry spans to stderr")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: json|text")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Enable debug logging")
	return fs
}

// configPath finds --config before the full flag parse so the file layer
// can sit under flags.
func configPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if name == a || a == "--" {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// AnyFeature reports whether at least one operation was requested.
func (c *Config) AnyFeature() bool {
	return c.Scan || c.WPAAudit || c.WPSTest || c.WPSAttack != "" || c.Deauth != "" ||
		c.Handshake != "" || c.CrackHandshake != "" || c.EvilTwin || c.Bluetooth ||
		c.InjectionTest || c.MonitorOnly
}

// NeedsMonitor reports whether monitor negotiation must run. A scan asks for
// it only when aircrack-ng is installed.
func (c *Config) NeedsMonitor(aircrack bool) bool {
	if c.WPSTest || c.WPSAttack != "" || c.Deauth != "" || c.Handshake != "" || c.InjectionTest || c.MonitorOnly {
		return true
	}
	return c.Scan && aircrack
}

// WantsReport reports whether the run produces a report.
func (c *Config) WantsReport() bool {
	return c.Scan || c.WPAAudit || c.WPSTest || c.EvilTwin || c.Bluetooth || c.Handshake != "" || c.WPSAttack != ""
}

// Validate checks the configuration and normalizes target BSSIDs.
func (c *Config) Validate() error {
	if !c.AnyFeature() {
		return domain.ErrNoFeature
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if c.Interface != "" && !domain.IsValidInterface(c.Interface) {
		return fmt.Errorf("invalid interface name: %q", c.Interface)
	}
	if !contains(outputFormats, strings.ToLower(c.Output)) {
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Channel < 0 {
		return fmt.Errorf("invalid channel %d", c.Channel)
	}

	targets := []struct {
		name string
		val  *string
	}{
		{"wps-attack", &c.WPSAttack},
		{"deauth", &c.Deauth},
		{"handshake", &c.Handshake},
	}
	for _, t := range targets {
		if *t.val == "" {
			continue
		}
		bssid, err := domain.NormalizeBSSID(*t.val)
		if err != nil {
			return fmt.Errorf("--%s %q: %w", t.name, *t.val, err)
		}
		*t.val = bssid
		if c.Channel == 0 {
			return fmt.Errorf("--%s: %w", t.name, domain.ErrChannelRequired)
		}
	}

	if c.CrackHandshake != "" && c.Wordlist == "" {
		return fmt.Errorf("--crack-handshake requires --wordlist")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
