package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// default values, match the platform constants
const (
	DefaultBaseURL            = "https://www.whzbtbxt.cn"
	DefaultTimeout            = 30 * time.Second
	DefaultLookback           = 30 * 24 * time.Hour
	DefaultPageSize           = 20
	DefaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultTimezone           = "Asia/Shanghai"
	DefaultFallbackEntries    = 15
	DefaultOutput             = "rss.xml"
	DefaultTitle              = "武汉公共资源交易平台 - 招标信息"
	DefaultDescription        = "自动抓取武汉公共资源交易平台的招标公告、变更公告、中标结果等信息"
	DefaultEmptyDescription   = "暂无最新招标信息"
	DefaultFailureDescription = "数据抓取暂时出现问题"
	DefaultLanguage           = "zh-cn"
	DefaultMaxItems           = 30
	DefaultInterval           = 30 * time.Minute
)

// Config holds the application configuration
type Config struct {
	Source   SourceConfig   `yaml:"source" json:"source" jsonschema:"description=Upstream platform settings"`
	Fallback FallbackConfig `yaml:"fallback" json:"fallback" jsonschema:"description=HTML fallback settings"`
	Feed     FeedConfig     `yaml:"feed" json:"feed" jsonschema:"description=Generated feed settings"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"description=HTTP listen address, empty to run once and exit"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30m,description=Feed refresh interval in serve mode"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`
}

// SourceConfig holds settings of the list API and the platform site
type SourceConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.whzbtbxt.cn,description=Platform base URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Per-request timeout"`
	Lookback  time.Duration `yaml:"lookback" json:"lookback" jsonschema:"default=720h,description=Query window ending now"`
	PageSize  int           `yaml:"page_size" json:"page_size" jsonschema:"default=20,minimum=1,maximum=100,description=Records requested per category"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for upstream requests"`
	Timezone  string        `yaml:"timezone" json:"timezone" jsonschema:"default=Asia/Shanghai,description=Timezone of upstream timestamps"`
}

// FallbackConfig holds HTML fallback settings
type FallbackConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Scrape the home page when the API returns nothing"`
	MaxEntries int  `yaml:"max_entries" json:"max_entries" jsonschema:"default=15,minimum=1,description=Maximum list entries taken from the page"`
}

// FeedConfig holds generated feed settings
type FeedConfig struct {
	Output             string `yaml:"output" json:"output" jsonschema:"default=rss.xml,description=Output file path"`
	Title              string `yaml:"title" json:"title" jsonschema:"description=Feed title"`
	Link               string `yaml:"link" json:"link" jsonschema:"description=Feed canonical link"`
	SelfLink           string `yaml:"self_link" json:"self_link,omitempty" jsonschema:"description=Public URL of the feed itself, adds atom:link rel=self"`
	Description        string `yaml:"description" json:"description" jsonschema:"description=Feed description"`
	EmptyDescription   string `yaml:"empty_description" json:"empty_description" jsonschema:"description=Description used when nothing was found"`
	FailureDescription string `yaml:"failure_description" json:"failure_description" jsonschema:"description=Description used when fetching failed"`
	Language           string `yaml:"language" json:"language" jsonschema:"default=zh-cn,description=Feed language tag"`
	MaxItems           int    `yaml:"max_items" json:"max_items" jsonschema:"default=30,minimum=1,description=Maximum items in the feed"`
	Pretty             *bool  `yaml:"pretty" json:"pretty,omitempty" jsonschema:"default=true,description=Indent the XML output"`
}

// Default returns configuration built from the platform constants
func Default() *Config {
	cfg := &Config{}
	cfg.Fallback.Enabled = true
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Config{Fallback: FallbackConfig{Enabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// source
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = DefaultBaseURL
	}
	cfg.Source.BaseURL = strings.TrimRight(cfg.Source.BaseURL, "/")
	if cfg.Source.Timeout == 0 {
		cfg.Source.Timeout = DefaultTimeout
	}
	if cfg.Source.Lookback == 0 {
		cfg.Source.Lookback = DefaultLookback
	}
	if cfg.Source.PageSize == 0 {
		cfg.Source.PageSize = DefaultPageSize
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = DefaultUserAgent
	}
	if cfg.Source.Timezone == "" {
		cfg.Source.Timezone = DefaultTimezone
	}

	// fallback
	if cfg.Fallback.MaxEntries == 0 {
		cfg.Fallback.MaxEntries = DefaultFallbackEntries
	}

	// feed
	if cfg.Feed.Output == "" {
		cfg.Feed.Output = DefaultOutput
	}
	if cfg.Feed.Title == "" {
		cfg.Feed.Title = DefaultTitle
	}
	if cfg.Feed.Link == "" {
		cfg.Feed.Link = cfg.Source.BaseURL
	}
	if cfg.Feed.Description == "" {
		cfg.Feed.Description = DefaultDescription
	}
	if cfg.Feed.EmptyDescription == "" {
		cfg.Feed.EmptyDescription = DefaultEmptyDescription
	}
	if cfg.Feed.FailureDescription == "" {
		cfg.Feed.FailureDescription = DefaultFailureDescription
	}
	if cfg.Feed.Language == "" {
		cfg.Feed.Language = DefaultLanguage
	}
	if cfg.Feed.MaxItems == 0 {
		cfg.Feed.MaxItems = DefaultMaxItems
	}
	if cfg.Feed.Pretty == nil {
		pretty := true
		cfg.Feed.Pretty = &pretty
	}

	// server and schedule
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = DefaultTimeout
	}
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = DefaultInterval
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Source.BaseURL)
	if err != nil {
		return fmt.Errorf("source.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source.base_url must be an absolute http(s) URL, got %q", cfg.Source.BaseURL)
	}
	if cfg.Source.Timeout < time.Second {
		return fmt.Errorf("source.timeout must be at least 1 second")
	}
	if cfg.Source.Lookback < 0 {
		return fmt.Errorf("source.lookback must be non-negative")
	}
	if cfg.Source.PageSize < 1 || cfg.Source.PageSize > 100 {
		return fmt.Errorf("source.page_size must be between 1 and 100")
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("source.timezone: %w", err)
	}
	if cfg.Fallback.MaxEntries < 1 {
		return fmt.Errorf("fallback.max_entries must be at least 1")
	}
	if cfg.Feed.MaxItems < 1 {
		return fmt.Errorf("feed.max_items must be at least 1")
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule.interval must be at least 1 minute")
	}
	return nil
}

// Validate checks the configuration, used after CLI overrides are applied
func (c *Config) Validate() error {
	return validate(c)
}

// Location returns the timezone upstream timestamps are expressed in.
// The default zone falls back to a fixed UTC+8 offset if tzdata is not available.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Source.Timezone)
	if err == nil {
		return loc, nil
	}
	if c.Source.Timezone == DefaultTimezone {
		return time.FixedZone("CST", 8*60*60), nil
	}
	return nil, fmt.Errorf("load location %q: %w", c.Source.Timezone, err)
}

// PrettyOutput reports whether the feed should be indented
func (c *Config) PrettyOutput() bool {
	return c.Feed.Pretty == nil || *c.Feed.Pretty
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
