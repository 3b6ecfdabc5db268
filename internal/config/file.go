package config

import "time"

// File is the structure of the .emissary YAML file. Every field is
// optional; unset fields keep the value from the previous layer.
type File struct {
	DBDir              *string        `yaml:"dbDir,omitempty"`
	Timeout            *time.Duration `yaml:"timeout,omitempty"`
	UserAgent          *string        `yaml:"userAgent,omitempty"`
	MaxBodySize        *int64         `yaml:"maxBodySize,omitempty"`
	Proxy              *string        `yaml:"proxy,omitempty"`
	InsecureSkipVerify *bool          `yaml:"insecureSkipVerify,omitempty"`
	MaxRedirects       *int           `yaml:"maxRedirects,omitempty"`
	Concurrency        *int           `yaml:"concurrency,omitempty"`
	LockTTL            *time.Duration `yaml:"lockTTL,omitempty"`
	LogFile            *string        `yaml:"logFile,omitempty"`
	Verbose            *bool          `yaml:"verbose,omitempty"`
	Report             ReportSection  `yaml:"report,omitempty"`
}

// ReportSection configures report output.
type ReportSection struct {
	Format *string `yaml:"format,omitempty"`
	File   *string `yaml:"file,omitempty"`
}

// Apply copies every set field of f onto c.
func (f *File) Apply(c *Config) {
	if f == nil {
		return
	}
	set(&c.DBDir, f.DBDir)
	set(&c.Timeout, f.Timeout)
	set(&c.UserAgent, f.UserAgent)
	set(&c.MaxBodySize, f.MaxBodySize)
	set(&c.Proxy, f.Proxy)
	set(&c.InsecureSkipVerify, f.InsecureSkipVerify)
	set(&c.MaxRedirects, f.MaxRedirects)
	set(&c.Concurrency, f.Concurrency)
	set(&c.LockTTL, f.LockTTL)
	set(&c.LogFile, f.LogFile)
	set(&c.Verbose, f.Verbose)
	set(&c.ReportFormat, f.Report.Format)
	set(&c.ReportFile, f.Report.File)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
