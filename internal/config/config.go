package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables consulted during resolution. They take priority over
// flags and the config file.
const (
	EnvCSVFile    = "CSV_FILE"
	EnvAPIKey     = "SPACESHIP_KEY"
	EnvAPISecret  = "SPACESHIP_SECRET"
	EnvDomain     = "DOMAIN"
	EnvSubdomains = "SUBDOMAINS"
	EnvMaxIPCount = "MAX_IP_COUNT"
	EnvTTL        = "TTL"
	EnvAPIBaseURL = "SPACESHIP_API_URL"
	EnvDryRun     = "DRY_RUN"
	EnvConfigPath = "CONFIG_PATH"
)

// Hardcoded defaults, used when no other source defines a value.
const (
	DefaultCSVPath    = "result.csv"
	DefaultDomain     = "example.com"
	DefaultMaxIPCount = 2
	DefaultTTL        = 300
	DefaultAPIBaseURL = "https://spaceship.dev/api/v1/dns/records"
)

// DefaultSubdomains are the labels updated when none are configured.
var DefaultSubdomains = []string{"@", "www", "*"}

var (
	// ErrMissingCredentials is returned when the API key or secret is empty
	// after resolution.
	ErrMissingCredentials = errors.New("API key and secret are required")
	// ErrInvalidValue is returned when a setting cannot be parsed.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is the resolved configuration of a run.
type Config struct {
	CSVPath    string
	APIKey     string
	APISecret  string
	Domain     string
	Subdomains []string
	MaxIPCount int
	TTL        int
	APIBaseURL string
	DryRun     bool
}

// Flags holds the command line flags. Only flags that were explicitly passed
// participate in resolution.
type Flags struct {
	ConfigPath string
	CSVPath    string
	APIKey     string
	APISecret  string
	Domain     string
	Subdomains string
	MaxIPCount int
	TTL        int
	APIBaseURL string
	DryRun     bool

	set map[string]bool
}

// BindFlags registers the updater flags on fs.
func (f *Flags) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to an optional YAML config file")
	fs.StringVar(&f.CSVPath, "csv", "", "Path to the measurement CSV (default "+DefaultCSVPath+")")
	fs.StringVar(&f.APIKey, "key", "", "Spaceship API key")
	fs.StringVar(&f.APISecret, "secret", "", "Spaceship API secret")
	fs.StringVar(&f.Domain, "domain", "", "Root domain (default "+DefaultDomain+")")
	fs.StringVar(&f.Subdomains, "subs", "", "Subdomains, comma separated (default "+strings.Join(DefaultSubdomains, ",")+")")
	fs.IntVar(&f.MaxIPCount, "max", DefaultMaxIPCount, "Max IPs to use per subdomain")
	fs.IntVar(&f.TTL, "ttl", DefaultTTL, "TTL of created records in seconds")
	fs.StringVar(&f.APIBaseURL, "api-url", "", "Spaceship DNS records endpoint (default "+DefaultAPIBaseURL+")")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Log planned changes without applying them")
}

// Capture records which flags were passed on fs. Call it after fs.Parse.
func (f *Flags) Capture(fs *flag.FlagSet) {
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
}

func (f *Flags) isSet(name string) bool {
	return f != nil && f.set[name]
}

// LookupFunc returns the value of an environment variable and whether it is
// set. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Resolve builds the configuration from the environment, flags, an optional
// config file, and defaults, in that order of priority. It does not check
// credentials; see Validate.
func Resolve(env LookupFunc, flags *Flags, file *File) (*Config, error) {
	if env == nil {
		env = os.LookupEnv
	}
	if file == nil {
		file = &File{}
	}
	if flags == nil {
		flags = &Flags{}
	}
	r := resolver{env: env, flags: flags}

	cfg := &Config{
		CSVPath:    r.str(EnvCSVFile, "csv", flags.CSVPath, file.CSVPath, DefaultCSVPath),
		APIKey:     r.str(EnvAPIKey, "key", flags.APIKey, file.APIKey, ""),
		APISecret:  r.str(EnvAPISecret, "secret", flags.APISecret, file.APISecret, ""),
		Domain:     r.str(EnvDomain, "domain", flags.Domain, file.Domain, DefaultDomain),
		APIBaseURL: r.str(EnvAPIBaseURL, "api-url", flags.APIBaseURL, file.APIBaseURL, DefaultAPIBaseURL),
	}

	switch {
	case r.envSet(EnvSubdomains):
		cfg.Subdomains = ParseList(r.envValue(EnvSubdomains))
	case flags.isSet("subs"):
		cfg.Subdomains = ParseList(flags.Subdomains)
	case file.Subdomains != nil:
		cfg.Subdomains = append([]string(nil), file.Subdomains...)
	default:
		cfg.Subdomains = append([]string(nil), DefaultSubdomains...)
	}

	var err error
	if cfg.MaxIPCount, err = r.integer(EnvMaxIPCount, "max", flags.MaxIPCount, file.MaxIPCount, DefaultMaxIPCount); err != nil {
		return nil, err
	}
	if cfg.TTL, err = r.integer(EnvTTL, "ttl", flags.TTL, file.TTL, DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = r.boolean(EnvDryRun, "dry-run", flags.DryRun, file.DryRun); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants a run depends on.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return ErrMissingCredentials
	}
	if c.MaxIPCount < 0 {
		return fmt.Errorf("%w: max IP count must not be negative, got %d", ErrInvalidValue, c.MaxIPCount)
	}
	if c.TTL < 0 {
		return fmt.Errorf("%w: ttl must not be negative, got %d", ErrInvalidValue, c.TTL)
	}
	return nil
}

// ParseList splits a comma-separated value into trimmed, non-empty tokens.
func ParseList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolver picks, per setting, the first source that defines it.
type resolver struct {
	env   LookupFunc
	flags *Flags
}

func (r resolver) envSet(key string) bool {
	_, ok := r.env(key)
	return ok
}

func (r resolver) envValue(key string) string {
	v, _ := r.env(key)
	return v
}

func (r resolver) str(envKey, flagName, flagVal string, fileVal *string, def string) string {
	if v, ok := r.env(envKey); ok {
		return v
	}
	if r.flags.isSet(flagName) {
		return flagVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func (r resolver) integer(envKey, flagName string, flagVal int, fileVal *int, def int) (int, error) {
	if v, ok := r.env(envKey); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, envKey, v)
		}
		return n, nil
	}
	if r.flags.isSet(flagName) {
		return flagVal, nil
	}
	if fileVal != nil {
		return *fileVal, nil
	}
	return def, nil
}

func (r resolver) boolean(envKey, flagName string, flagVal bool, fileVal *bool) (bool, error) {
	if v, ok := r.env(envKey); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, envKey, v)
		}
		return b, nil
	}
	if r.flags.isSet(flagName) {
		return flagVal, nil
	}
	if fileVal != nil {
		return *fileVal, nil
	}
	return false, nil
}
