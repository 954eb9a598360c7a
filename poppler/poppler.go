// Package poppler reads and renders PDF pages with the poppler-utils
// command line tools.
package poppler

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/exec"
)

// Default tool settings.
const (
	DefaultPdfinfo   = "pdfinfo"
	DefaultPdftotext = "pdftotext"
	DefaultPdftoppm  = "pdftoppm"
	DefaultDPI       = 300
)

// Ensure Poppler implements the page capabilities at compile time.
var (
	_ evidex.PageReader   = (*Poppler)(nil)
	_ evidex.PageRenderer = (*Poppler)(nil)
)

// Poppler implements evidex.PageReader with pdftotext and pdfinfo and
// evidex.PageRenderer with pdftoppm.
type Poppler struct {
	Runner    exec.Runner
	Pdfinfo   string
	Pdftotext string
	Pdftoppm  string
	DPI       int
}

// New creates a Poppler using the default binaries on PATH.
func New(runner exec.Runner) *Poppler {
	return &Poppler{
		Runner:    runner,
		Pdfinfo:   DefaultPdfinfo,
		Pdftotext: DefaultPdftotext,
		Pdftoppm:  DefaultPdftoppm,
		DPI:       DefaultDPI,
	}
}

// ReadPages returns the text layer of every page. pdftotext separates
// pages with form feeds; pages without a text layer come back empty.
func (p *Poppler) ReadPages(ctx context.Context, document []byte) (*evidex.PageSet, error) {
	var set *evidex.PageSet
	err := exec.WithTempFile(document, "evidex-*.pdf", func(path string) error {
		count, err := p.pageCount(ctx, path)
		if err != nil {
			return err
		}

		out, stderr, err := p.Runner.Run(ctx, nil, p.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
		if err != nil {
			return p.toolError(ctx, p.Pdftotext, err, stderr)
		}

		parts := strings.Split(string(out), "\f")
		// pdftotext terminates the last page with a form feed too.
		if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}
		if count < len(parts) {
			count = len(parts)
		}

		set = &evidex.PageSet{PageCount: count}
		for i, text := range parts {
			set.Pages = append(set.Pages, evidex.NativePage{PageNumber: i + 1, Text: text})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// RenderPage rasterizes one page to PNG at the configured resolution.
func (p *Poppler) RenderPage(ctx context.Context, document []byte, pageNumber int) ([]byte, error) {
	if pageNumber < 1 {
		return nil, evidex.Errorf(evidex.EINVALID, "invalid page number %d", pageNumber)
	}

	dir, err := os.MkdirTemp("", "evidex-render-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	var image []byte
	err = exec.WithTempFile(document, "evidex-*.pdf", func(path string) error {
		prefix := filepath.Join(dir, "page")
		n := strconv.Itoa(pageNumber)
		dpi := p.DPI
		if dpi <= 0 {
			dpi = DefaultDPI
		}
		_, stderr, err := p.Runner.Run(ctx, nil, p.Pdftoppm,
			"-r", strconv.Itoa(dpi), "-png", "-f", n, "-l", n, "-singlefile", path, prefix)
		if err != nil {
			return p.toolError(ctx, p.Pdftoppm, err, stderr)
		}

		image, err = os.ReadFile(prefix + ".png")
		if err != nil {
			return evidex.Errorf(evidex.ECORRUPT, "%s produced no image for page %d", p.Pdftoppm, pageNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (p *Poppler) pageCount(ctx context.Context, path string) (int, error) {
	out, stderr, err := p.Runner.Run(ctx, nil, p.Pdfinfo, path)
	if err != nil {
		return 0, p.toolError(ctx, p.Pdfinfo, err, stderr)
	}
	count, ok := ParsePageCount(out)
	if !ok {
		return 0, evidex.Errorf(evidex.ECORRUPT, "%s reported no page count", p.Pdfinfo)
	}
	return count, nil
}

// ParsePageCount reads the "Pages:" field of pdfinfo output.
func ParsePageCount(info []byte) (int, bool) {
	sc := bufio.NewScanner(bytes.NewReader(info))
	for sc.Scan() {
		name, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(name) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// toolError maps a failed invocation. A missing binary means the format
// cannot be handled on this host; anything else is a damaged document.
func (p *Poppler) toolError(ctx context.Context, tool string, err error, stderr []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if exec.IsNotFound(err) {
		return evidex.Errorf(evidex.EUNSUPPORTED, "%s is not installed", tool)
	}
	return evidex.Errorf(evidex.ECORRUPT, "%s: %v: %s", tool, err, exec.StderrMessage(stderr))
}
