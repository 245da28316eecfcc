package importer

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/quizdoc/docpipe"
)

// Config holds all importer configuration.
type Config struct {
	DBPath         string   `yaml:"db_path"`
	Listen         string   `yaml:"listen"`
	MaxFileSize    int64    `yaml:"max_file_size"`
	AllowedFormats []string `yaml:"allowed_formats"`
	PDFDecoder     string   `yaml:"pdf_decoder"`

	// Defaults fill metadata fields left empty by the uploader.
	Defaults MetaDefaults `yaml:"defaults"`
	// Difficulties lists the accepted difficulty levels.
	Difficulties []string `yaml:"difficulties"`

	// When AdminPasswordHash is set, write routes require HTTP Basic auth.
	AdminUser         string `yaml:"admin_user"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt
}

// MetaDefaults are the batch metadata defaults.
type MetaDefaults struct {
	Topic      string `yaml:"topic" json:"topic"`
	Subtopic   string `yaml:"subtopic" json:"subtopic"`
	Difficulty string `yaml:"difficulty" json:"difficulty"`
}

func (c *Config) defaults() {
	if c.DBPath == "" {
		c.DBPath = "quizdoc.db"
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 10 << 20
	}
	if len(c.AllowedFormats) == 0 {
		c.AllowedFormats = []string{string(docpipe.FormatPDF)}
	}
	if c.PDFDecoder == "" {
		c.PDFDecoder = docpipe.DecoderContentStream
	}
	if c.Defaults.Topic == "" {
		c.Defaults.Topic = "Python"
	}
	if c.Defaults.Subtopic == "" {
		c.Defaults.Subtopic = "Basics"
	}
	if c.Defaults.Difficulty == "" {
		c.Defaults.Difficulty = "medium"
	}
	if len(c.Difficulties) == 0 {
		c.Difficulties = []string{"easy", "medium", "hard"}
	}
	if c.AdminUser == "" {
		c.AdminUser = "admin"
	}
}

func (c *Config) validate() error {
	for _, f := range c.AllowedFormats {
		if !slices.Contains(docpipe.SupportedFormats(), f) {
			return fmt.Errorf("config: allowed_formats: unknown format %q (supported: %s)",
				f, strings.Join(docpipe.SupportedFormats(), ", "))
		}
	}
	if !slices.Contains(docpipe.PDFDecoders(), c.PDFDecoder) {
		return fmt.Errorf("config: pdf_decoder: unknown decoder %q", c.PDFDecoder)
	}
	if !slices.Contains(c.Difficulties, c.Defaults.Difficulty) {
		return fmt.Errorf("config: defaults.difficulty %q is not one of %v", c.Defaults.Difficulty, c.Difficulties)
	}
	return nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
