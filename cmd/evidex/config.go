package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/evidex/extract"
	"github.com/fwojciec/evidex/pipeline"
	"github.com/fwojciec/evidex/poppler"
	"github.com/fwojciec/evidex/tesseract"
	"gopkg.in/yaml.v3"
)

// Config holds settings read from the optional YAML config file.
// Command-line flags override file values.
type Config struct {
	Store            string        `yaml:"store"`
	Workers          int           `yaml:"workers"`
	Timeout          time.Duration `yaml:"timeout"`
	WindowLines      int           `yaml:"window_lines"`
	SnippetWindow    int           `yaml:"snippet_window"`
	OCRMinConfidence float64       `yaml:"ocr_min_confidence"`
	OCRRate          float64       `yaml:"ocr_rate"`
	MaxFileBytes     int64         `yaml:"max_file_bytes"`
	TolerateFailures bool          `yaml:"tolerate_failures"`
	Tools            ToolsConfig   `yaml:"tools"`

	// Gazetteer is a YAML file of known names recognized as entities.
	Gazetteer string `yaml:"gazetteer"`

	// NERCommand is a local entity model command that reads text on stdin
	// and writes JSON mentions to stdout.
	NERCommand []string `yaml:"ner_command"`
}

// ToolsConfig names the external extraction engines.
type ToolsConfig struct {
	Pdfinfo   string `yaml:"pdfinfo"`
	Pdftotext string `yaml:"pdftotext"`
	Pdftoppm  string `yaml:"pdftoppm"`
	Tesseract string `yaml:"tesseract"`
	Language  string `yaml:"language"`
	DPI       int    `yaml:"dpi"`
	PSM       int    `yaml:"psm"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Timeout:          5 * time.Minute,
		WindowLines:      extract.DefaultWindowLines,
		SnippetWindow:    80,
		OCRMinConfidence: extract.DefaultMinConfidence,
		MaxFileBytes:     pipeline.DefaultMaxFileBytes,
		Tools: ToolsConfig{
			Pdfinfo:   poppler.DefaultPdfinfo,
			Pdftotext: poppler.DefaultPdftotext,
			Pdftoppm:  poppler.DefaultPdftoppm,
			Tesseract: tesseract.DefaultCommand,
			Language:  tesseract.DefaultLanguage,
			DPI:       poppler.DefaultDPI,
		},
	}
}

// LoadConfig reads path over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ToolVersion tags documents with the engines that produced them, so a
// change of engine or windowing reprocesses stored documents.
func (c *Config) ToolVersion(gazetteerVersion string) string {
	v := fmt.Sprintf("evidex/3 tesseract:%s psm:%d dpi:%d window:%d minconf:%g",
		c.Tools.Language, c.Tools.PSM, c.Tools.DPI, c.WindowLines, c.OCRMinConfidence)
	if gazetteerVersion != "" {
		v += " gazetteer:" + gazetteerVersion
	}
	if len(c.NERCommand) > 0 {
		v += " ner:" + pipeline.ComputeHash([]byte(fmt.Sprint(c.NERCommand)))
	}
	return v
}
