package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/azdolinski/emissary/internal/report"
	"github.com/azdolinski/emissary/internal/transport"
)

// AppName is used for XDG directory paths.
const AppName = "emissary"

// Default configuration values.
const (
	// DefaultTimeout bounds each action request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when an action defines no User-Agent header.
	DefaultUserAgent = "Emissary/1.0 (+https://github.com/azdolinski/emissary)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMaxRedirects is the number of redirects followed per request.
	DefaultMaxRedirects = 10

	// DefaultConcurrency is the number of profiles run at once by run --all.
	// Actions within a profile are always sequential.
	DefaultConcurrency = 4

	// DefaultLockTTL is how long a run lock is honoured before another
	// process may take it over.
	DefaultLockTTL = 5 * time.Minute

	// DefaultReportFormat is the report format printed after a run.
	DefaultReportFormat = FormatText
)

// Report formats.
const (
	FormatText     = report.FormatText
	FormatHTML     = report.FormatHTML
	FormatJSON     = report.FormatJSON
	FormatMarkdown = report.FormatMarkdown
)

// ReportFormats lists the accepted report formats.
func ReportFormats() []string {
	return report.Formats()
}

// Config holds all configuration options for emissary.
// It is built once per invocation and passed to the components that need
// it rather than kept in global state.
type Config struct {
	// DBDir is the directory holding emissary.db.
	// Defaults to the XDG data directory (~/.local/share/emissary on Linux).
	DBDir string `env:"DB_DIR"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `env:"TIMEOUT"`

	// UserAgent is set on requests whose action has no User-Agent header.
	// Empty sends Go's default.
	UserAgent string `env:"USER_AGENT"`

	// MaxBodySize caps response bytes read per request.
	MaxBodySize int64 `env:"MAX_BODY_SIZE"`

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string `env:"PROXY"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `env:"INSECURE_SKIP_VERIFY"`

	// MaxRedirects caps redirects; negative disables following them.
	MaxRedirects int `env:"MAX_REDIRECTS"`

	// Concurrency bounds how many profiles run at once.
	Concurrency int `env:"CONCURRENCY"`

	// LockTTL is the stale timeout of the cross-process run lock.
	LockTTL time.Duration `env:"LOCK_TTL"`

	// LogFile, when set, receives JSON debug logs with size rotation.
	LogFile string `env:"LOG_FILE"`

	// Verbose enables debug output on stderr.
	Verbose bool `env:"VERBOSE"`

	// ReportFormat is one of ReportFormats.
	ReportFormat string `env:"REPORT_FORMAT"`

	// ReportFile, when set, receives the report instead of stdout.
	ReportFile string `env:"REPORT_FILE"`

	// ConfigFilePath is the file the configuration was loaded from, if any.
	ConfigFilePath string `env:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		DBDir:        XDGDataDir(),
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		MaxRedirects: DefaultMaxRedirects,
		Concurrency:  DefaultConcurrency,
		LockTTL:      DefaultLockTTL,
		ReportFormat: DefaultReportFormat,
	}
}

// XDGDataDir returns the XDG data directory for emissary.
// On Linux: ~/.local/share/emissary
// On macOS: ~/Library/Application Support/emissary
// On Windows: %LOCALAPPDATA%\emissary
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for emissary.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the configuration file looked up in XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// XDGStateDir returns the XDG state directory, where log files go by
// default.
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// Validate returns the first invalid setting found.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return ErrEmptyDBDir
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.LockTTL <= 0 {
		return ErrInvalidLockTTL
	}
	if !slices.Contains(ReportFormats(), c.ReportFormat) {
		return fmt.Errorf("%w: %q", ErrInvalidReportFormat, c.ReportFormat)
	}
	if c.Proxy != "" {
		if err := transport.ValidateProxyAddress(c.Proxy); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
	}
	return nil
}

// TransportOptions returns the HTTP client options described by c.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		Timeout:            c.Timeout,
		ProxyAddress:       c.Proxy,
		InsecureSkipVerify: c.InsecureSkipVerify,
		MaxRedirects:       c.MaxRedirects,
	}
}
