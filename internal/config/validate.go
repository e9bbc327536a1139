package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Pipeline.Parallelism > 64 {
		return errors.New("pipeline.parallelism must be at most 64")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	endpoints := []struct {
		key   string
		value string
	}{
		{"archive.base_url", c.Archive.BaseURL},
		{"mast.base_url", c.MAST.BaseURL},
		{"simbad.base_url", c.SIMBAD.BaseURL},
	}
	for _, endpoint := range endpoints {
		parsed, err := url.Parse(endpoint.value)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint.key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", endpoint.key, endpoint.value)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host, got %q", endpoint.key, endpoint.value)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
