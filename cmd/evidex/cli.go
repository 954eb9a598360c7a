package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    *Config
	Documents evidex.DocumentService
	Search    evidex.SearchService
	Index     evidex.IndexService
	Ingester  *pipeline.Ingester
	PageStore evidex.PageStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"YAML config file" type:"path"`
	DB      string `name:"db" help:"Store path (overrides EVIDEX_DB)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Ingest   IngestCmd   `cmd:"" help:"Ingest every supported file under a directory"`
	Search   SearchCmd   `cmd:"" help:"Keyword search over indexed pages"`
	Entities EntitiesCmd `cmd:"" help:"Find mentions of a named entity"`
	Top      TopCmd      `cmd:"" help:"List the most mentioned entities of a type"`
	Assets   AssetsCmd   `cmd:"" help:"List or look up aircraft registrations and IMO numbers"`
	Docs     DocsCmd     `cmd:"" help:"List indexed documents"`
	Page     PageCmd     `cmd:"" help:"Print the stored text of one page"`
	Export   ExportCmd   `cmd:"" help:"Export stored pages as text files"`
	Stats    StatsCmd    `cmd:"" help:"Show row counts of the store"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Dir              string        `arg:"" help:"Directory of raw files" type:"existingdir"`
	Workers          int           `short:"w" help:"Concurrent extraction workers (default: CPU count)"`
	Timeout          time.Duration `help:"Per-document extraction timeout"`
	TolerateFailures bool          `help:"Exit successfully even if some documents failed"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query   string   `arg:"" help:"Keywords, \"quoted phrases\", prefix* terms and OR"`
	Doc     []string `help:"Restrict to document paths (repeatable)"`
	From    string   `help:"Only pages mentioning a date on or after (YYYY, YYYY-MM or YYYY-MM-DD)"`
	To      string   `help:"Only pages mentioning a date on or before (YYYY, YYYY-MM or YYYY-MM-DD)"`
	HasType []string `name:"has-type" help:"Only pages mentioning an entity of this type (repeatable)"`
	Limit   int      `short:"n" help:"Maximum number of hits"`
	Window  int      `help:"Snippet context in bytes on each side of the match"`
	JSON    bool     `name:"json" help:"Print results as JSON"`
}

// EntitiesCmd is the "entities" subcommand.
type EntitiesCmd struct {
	Type   string `arg:"" help:"Entity type: PERSON, ORG, PLACE or DATE"`
	Text   string `arg:"" help:"Entity text"`
	Prefix bool   `help:"Match canonical text by prefix"`
	JSON   bool   `name:"json" help:"Print results as JSON"`
}

// TopCmd is the "top" subcommand.
type TopCmd struct {
	Type  string `arg:"" help:"Entity type: PERSON, ORG, PLACE or DATE"`
	Limit int    `short:"n" default:"10" help:"Number of entities"`
}

// AssetsCmd is the "assets" subcommand.
type AssetsCmd struct {
	Type   string `arg:"" help:"Asset type: AIRCRAFT_REG or IMO"`
	Value  string `arg:"" optional:"" help:"Registration or IMO number to look up; omit to list the most referenced"`
	Prefix bool   `help:"Match canonical identifiers by prefix"`
	Limit  int    `short:"n" default:"10" help:"Number of assets when listing"`
	JSON   bool   `name:"json" help:"Print results as JSON"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Failed bool `help:"Only list documents whose latest ingestion failed"`
}

// PageCmd is the "page" subcommand.
type PageCmd struct {
	Path   string `arg:"" help:"Document path as listed by 'evidex docs'"`
	Number int    `arg:"" help:"Page number"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `arg:"" help:"Output directory (replaced atomically)"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
