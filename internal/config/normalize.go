package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeArchive()
	c.normalizeMAST()
	c.normalizeSIMBAD()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if c.Pipeline.Parallelism <= 0 {
		c.Pipeline.Parallelism = defaultPipelineParallelism
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeArchive() {
	if value, ok := os.LookupEnv("SPECFETCH_ARCHIVE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Archive.BaseURL = value
	}
	c.Archive.BaseURL = strings.TrimRight(strings.TrimSpace(c.Archive.BaseURL), "/")
	if c.Archive.BaseURL == "" {
		c.Archive.BaseURL = defaultArchiveBaseURL
	}
	if c.Archive.TimeoutSeconds <= 0 {
		c.Archive.TimeoutSeconds = defaultArchiveTimeout
	}
	c.Archive.UserAgent = strings.TrimSpace(c.Archive.UserAgent)
	if c.Archive.UserAgent == "" {
		c.Archive.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeMAST() {
	if value, ok := os.LookupEnv("SPECFETCH_MAST_URL"); ok && strings.TrimSpace(value) != "" {
		c.MAST.BaseURL = value
	}
	c.MAST.BaseURL = strings.TrimRight(strings.TrimSpace(c.MAST.BaseURL), "/")
	if c.MAST.BaseURL == "" {
		c.MAST.BaseURL = defaultMASTBaseURL
	}
	if c.MAST.TimeoutSeconds <= 0 {
		c.MAST.TimeoutSeconds = defaultMASTTimeout
	}
	if c.MAST.MaxRecords <= 0 {
		c.MAST.MaxRecords = defaultMASTMaxRecords
	}
}

func (c *Config) normalizeSIMBAD() {
	if value, ok := os.LookupEnv("SPECFETCH_SIMBAD_URL"); ok && strings.TrimSpace(value) != "" {
		c.SIMBAD.BaseURL = value
	}
	c.SIMBAD.BaseURL = strings.TrimRight(strings.TrimSpace(c.SIMBAD.BaseURL), "/")
	if c.SIMBAD.BaseURL == "" {
		c.SIMBAD.BaseURL = defaultSIMBADBaseURL
	}
	if c.SIMBAD.TimeoutSeconds <= 0 {
		c.SIMBAD.TimeoutSeconds = defaultSIMBADTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
