package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/entity"
	"github.com/fwojciec/evidex/exec"
	"github.com/fwojciec/evidex/extract"
	"github.com/fwojciec/evidex/fs"
	"github.com/fwojciec/evidex/gazetteer"
	"github.com/fwojciec/evidex/htmltomarkdown"
	"github.com/fwojciec/evidex/pipeline"
	"github.com/fwojciec/evidex/poppler"
	evslog "github.com/fwojciec/evidex/slog"
	"github.com/fwojciec/evidex/sqlite"
	"github.com/fwojciec/evidex/tesseract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Runner executes external engines. Tests replace it with a stub.
	Runner exec.Runner
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: os.Getenv("EVIDEX_DB"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("evidex"),
		kong.Description("Provenance-preserving document index and search."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'evidex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = kongCtx.Command()

	cfg := DefaultConfig()
	if cli.Config != "" {
		if cfg, err = LoadConfig(cli.Config); err != nil {
			return err
		}
	}
	deps.Config = cfg

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	dbPath := m.dbPath(cli.DB, cfg.Store)
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set EVIDEX_DB or --db to use a different store path\n")
		return fmt.Errorf("failed to open store at %q: %w", dbPath, err)
	}
	defer m.Close()

	index := sqlite.NewIndexService(m.DB)
	search := sqlite.NewSearchService(m.DB)
	search.SnippetWindow = cfg.SnippetWindow
	if cli.Search.Window > 0 {
		search.SnippetWindow = cli.Search.Window
	}
	deps.Documents = sqlite.NewDocumentService(m.DB)
	deps.Search = evslog.NewLoggingSearchService(search, logger)
	deps.Index = index

	switch cmd {
	case "ingest <dir>":
		ingester, err := m.newIngester(cfg, logger)
		if err != nil {
			return err
		}
		ingester.Index = evslog.NewLoggingIndexService(index, logger)
		deps.Ingester = ingester
	case "export <dir>":
		dir, err := filepath.Abs(cli.Export.Dir)
		if err != nil {
			return err
		}
		deps.PageStore = fs.NewFileStore(filepath.Dir(dir), filepath.Base(dir))
	}

	return kongCtx.Run(deps)
}

// newIngester wires the extraction engines named by cfg.
func (m *Main) newIngester(cfg *Config, logger *slog.Logger) (*pipeline.Ingester, error) {
	runner := m.Runner
	if runner == nil {
		runner = exec.NewCommandRunner(logger)
	}

	pdf := poppler.New(runner)
	pdf.Pdfinfo = cfg.Tools.Pdfinfo
	pdf.Pdftotext = cfg.Tools.Pdftotext
	pdf.Pdftoppm = cfg.Tools.Pdftoppm
	pdf.DPI = cfg.Tools.DPI

	ocr := tesseract.NewRecognizer(runner)
	ocr.Command = cfg.Tools.Tesseract
	ocr.Language = cfg.Tools.Language
	ocr.PSM = cfg.Tools.PSM

	extractor := extract.NewExtractor()
	extractor.Reader = evslog.NewLoggingPageReader(pdf, logger)
	extractor.Renderer = evslog.NewLoggingPageRenderer(pdf, logger)
	extractor.Recognizer = extract.NewThrottledRecognizer(evslog.NewLoggingRecognizer(ocr, logger), cfg.OCRRate)
	extractor.Converter = htmltomarkdown.NewConverter()
	extractor.WindowLines = cfg.WindowLines
	extractor.MinConfidence = cfg.OCRMinConfidence

	recognizers := entity.Multi{gazetteer.DateRecognizer{}}
	var gazetteerVersion string
	if cfg.Gazetteer != "" {
		g, err := gazetteer.Open(cfg.Gazetteer)
		if err != nil {
			return nil, err
		}
		recognizers = append(recognizers, g)
		gazetteerVersion = g.Version()
	}
	if len(cfg.NERCommand) > 0 {
		ner := exec.NewEntityRecognizer(runner, cfg.NERCommand[0], cfg.NERCommand[1:]...)
		recognizers = append(recognizers, evslog.NewLoggingEntityRecognizer(ner, logger))
	}

	return &pipeline.Ingester{
		Source:       fs.NewScanner(),
		Extractor:    extractor,
		Entities:     entity.NewExtractor(recognizers),
		Assets:       gazetteer.AssetRecognizer{},
		Logger:       logger,
		Workers:      cfg.Workers,
		Timeout:      cfg.Timeout,
		MaxFileBytes: cfg.MaxFileBytes,
		ToolVersion:  cfg.ToolVersion(gazetteerVersion),
	}, nil
}

// dbPath resolves the store path: flag, then EVIDEX_DB, then config file,
// then ~/.evidex/evidex.db.
func (m *Main) dbPath(flag, configured string) string {
	for _, p := range []string{flag, m.DBPath, configured} {
		if p != "" {
			return p
		}
	}
	return defaultDBPath()
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "evidex.db"
	}
	dir := filepath.Join(home, ".evidex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "evidex.db")
}

// failf prints the user-facing message of err and returns it.
func failf(deps *Dependencies, err error) error {
	if evidex.ErrorCode(err) == evidex.EINTERNAL {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
	} else {
		fmt.Fprintf(deps.Stderr, "error: %s\n", evidex.ErrorMessage(err))
	}
	return err
}
