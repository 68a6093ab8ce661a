// Package config resolves runtime settings from defaults, an optional YAML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Adda-Baaj/khobor-sandhan/pkg/providers"
)

// EnvPrefix namespaces environment overrides, e.g. KHOBOR_MAX_PAGES or KHOBOR_OUTPUT_DIR.
const EnvPrefix = "KHOBOR"

// Config is the fully resolved runtime configuration.
// MaxPages is the page budget of every listing provider and overrides a provider's own
// max_pages. MaxFeedResults only fills feed providers that leave max_results unset.
type Config struct {
	Keywords       []string             `mapstructure:"keywords" validate:"required,min=1,dive,required"`
	MaxPages       int                  `mapstructure:"max_pages" validate:"gte=1,lte=50"`
	MaxFeedResults int                  `mapstructure:"max_feed_results" validate:"gte=1"`
	Output         OutputConfig         `mapstructure:"output"`
	Log            LogConfig            `mapstructure:"log"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	KeywordDelay   DelayConfig          `mapstructure:"keyword_delay"`
	Providers      []providers.Provider `mapstructure:"providers"`
	Announce       AnnounceConfig       `mapstructure:"announce"`
}

// OutputConfig controls where the report is written.
type OutputConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	File string `mapstructure:"file"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig configures the shared HTTP client.
type HTTPConfig struct {
	Timeout   time.Duration     `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string            `mapstructure:"user_agent"`
	Headers   map[string]string `mapstructure:"headers"`
}

// DelayConfig bounds a randomized pause.
type DelayConfig struct {
	Min time.Duration `mapstructure:"min" validate:"gte=0"`
	Max time.Duration `mapstructure:"max" validate:"gtefield=Min"`
}

// AnnounceConfig enables publishing newly seen articles.
type AnnounceConfig struct {
	PublishersFile string `mapstructure:"publishers_file"`
	StatePath      string `mapstructure:"state_path"`
	FailOnError    bool   `mapstructure:"fail_on_error"`
}

// Enabled reports whether a publishers file is configured.
func (a AnnounceConfig) Enabled() bool {
	return strings.TrimSpace(a.PublishersFile) != ""
}

// Flag names bound onto config keys.
const (
	FlagConfig   = "config"
	FlagKeyword  = "keyword"
	FlagMaxPages = "max-pages"
	FlagOut      = "out"
	FlagLogLevel = "log-level"
)

var flagKeys = map[string]string{
	FlagKeyword:  "keywords",
	FlagMaxPages: "max_pages",
	FlagOut:      "output.dir",
	FlagLogLevel: "log.level",
}

// DefaultKeywords are searched when nothing else is configured.
func DefaultKeywords() []string {
	return []string{"Technology", "Science", "Business"}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("keywords", DefaultKeywords())
	v.SetDefault("max_pages", 5)
	v.SetDefault("max_feed_results", 50)
	v.SetDefault("output.dir", defaultOutputDir())
	v.SetDefault("output.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("keyword_delay.min", 5*time.Second)
	v.SetDefault("keyword_delay.max", 10*time.Second)
	v.SetDefault("announce.publishers_file", "")
	v.SetDefault("announce.state_path", "khobor-state.db")
	v.SetDefault("announce.fail_on_error", false)
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Desktop")
}

// Load resolves the configuration. path may be empty; flags may be nil. Only flags the user
// actually set override lower layers.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Keywords = splitKeywords(c.Keywords)
	c.Output.Dir = expandHome(strings.TrimSpace(c.Output.Dir))
	c.Output.File = strings.TrimSpace(c.Output.File)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Announce.PublishersFile = expandHome(strings.TrimSpace(c.Announce.PublishersFile))
	c.Announce.StatePath = expandHome(strings.TrimSpace(c.Announce.StatePath))

	defaulted := len(c.Providers) == 0
	if defaulted {
		c.Providers = providers.DefaultProviders()
	}
	for i, p := range c.Providers {
		if strings.EqualFold(strings.TrimSpace(p.Type), providers.ProviderTypeFeed) && (defaulted || p.MaxResults <= 0) {
			p.MaxResults = c.MaxFeedResults
		}
		// the global page budget always wins; it is also what the crawler passes to RunAll
		if strings.EqualFold(strings.TrimSpace(p.Type), providers.ProviderTypeListing) && c.MaxPages > 0 {
			p.MaxPages = c.MaxPages
		}
		c.Providers[i] = providers.Sanitize(p)
	}
}

// splitKeywords accepts both list values and comma-separated env values, dropping blanks.
func splitKeywords(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks struct constraints and every provider entry.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Providers))
	enabled := 0
	for i, p := range c.Providers {
		if err := providers.Validate(p); err != nil {
			return fmt.Errorf("invalid config: providers[%d]: %w", i, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("invalid config: duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true
		if p.EnabledValue() {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.New("invalid config: no enabled providers")
	}

	if c.Announce.Enabled() && c.Announce.StatePath == "" {
		return errors.New("invalid config: announce.state_path is required when announce.publishers_file is set")
	}
	return nil
}
