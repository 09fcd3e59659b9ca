package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// File is the optional YAML config file. Unset fields fall through to the
// hardcoded defaults.
type File struct {
	CSVPath    *string  `yaml:"csv"`
	APIKey     *string  `yaml:"key"`
	APISecret  *string  `yaml:"secret"`
	Domain     *string  `yaml:"domain"`
	Subdomains []string `yaml:"subdomains"`
	MaxIPCount *int     `yaml:"max"`
	TTL        *int     `yaml:"ttl"`
	APIBaseURL *string  `yaml:"api_url"`
	DryRun     *bool    `yaml:"dry_run"`
}

// LoadFile reads the config file at path. ${ENV_VAR} references in string
// values are expanded.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for _, s := range []*string{f.CSVPath, f.APIKey, f.APISecret, f.Domain, f.APIBaseURL} {
		if s != nil {
			*s = os.ExpandEnv(*s)
		}
	}
	for i, sub := range f.Subdomains {
		f.Subdomains[i] = os.ExpandEnv(sub)
	}
	return &f, nil
}

// FilePath returns the config file to load: CONFIG_PATH if set, otherwise the
// --config flag. An empty result means no file.
func FilePath(env LookupFunc, flags *Flags) string {
	if env == nil {
		env = os.LookupEnv
	}
	if v, ok := env(EnvConfigPath); ok {
		return v
	}
	if flags != nil {
		return flags.ConfigPath
	}
	return ""
}
