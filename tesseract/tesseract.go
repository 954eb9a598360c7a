// Package tesseract implements optical recognition with the tesseract
// command line engine.
package tesseract

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/evidex"
	"github.com/fwojciec/evidex/exec"
)

// Default engine settings.
const (
	DefaultCommand  = "tesseract"
	DefaultLanguage = "eng"
)

// Ensure Recognizer implements evidex.Recognizer at compile time.
var _ evidex.Recognizer = (*Recognizer)(nil)

// Recognizer runs tesseract in TSV mode so that text and per-word
// confidence come from a single pass.
type Recognizer struct {
	Runner      exec.Runner
	Command     string
	Language    string
	PSM         int
	TessdataDir string
}

// NewRecognizer creates a Recognizer with default settings.
func NewRecognizer(runner exec.Runner) *Recognizer {
	return &Recognizer{Runner: runner, Command: DefaultCommand, Language: DefaultLanguage}
}

// Recognize returns the recognized text and mean word confidence.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) (*evidex.Recognition, error) {
	var rec *evidex.Recognition
	err := exec.WithTempFile(image, "evidex-*.img", func(path string) error {
		args := []string{path, "stdout", "-l", r.Language}
		if r.PSM > 0 {
			args = append(args, "--psm", strconv.Itoa(r.PSM))
		}
		if r.TessdataDir != "" {
			args = append(args, "--tessdata-dir", r.TessdataDir)
		}
		args = append(args, "tsv")

		out, stderr, err := r.Runner.Run(ctx, nil, r.Command, args...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if exec.IsNotFound(err) {
				return evidex.Errorf(evidex.EOCR, "%s is not installed", r.Command)
			}
			return evidex.Errorf(evidex.EOCR, "%s: %v: %s", r.Command, err, exec.StderrMessage(stderr))
		}
		rec = ParseTSV(out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// TSV columns.
const (
	colLevel = iota
	colPage
	colBlock
	colPar
	colLine
	colWord
	colLeft
	colTop
	colWidth
	colHeight
	colConf
	colText
	numCols
)

type lineKey struct{ page, block, par, line int }

// ParseTSV rebuilds text from word rows, one output line per engine
// line, with paragraphs separated by blank lines. Confidence is the mean
// of word confidences scaled to 0..1.
func ParseTSV(tsv []byte) *evidex.Recognition {
	lines := map[lineKey][]string{}
	var keys []lineKey
	var sum float64
	var n int

	for i, row := range strings.Split(string(tsv), "\n") {
		if i == 0 || row == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < numCols || cols[colLevel] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[colText])
		if word == "" {
			continue
		}

		k := lineKey{atoi(cols[colPage]), atoi(cols[colBlock]), atoi(cols[colPar]), atoi(cols[colLine])}
		if _, ok := lines[k]; !ok {
			keys = append(keys, k)
		}
		lines[k] = append(lines[k], word)
		sum += conf
		n++
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.page != b.page {
			return a.page < b.page
		}
		if a.block != b.block {
			return a.block < b.block
		}
		if a.par != b.par {
			return a.par < b.par
		}
		return a.line < b.line
	})

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			prev := keys[i-1]
			if prev.page != k.page || prev.block != k.block || prev.par != k.par {
				b.WriteString("\n")
			}
		}
		b.WriteString(strings.Join(lines[k], " "))
		b.WriteString("\n")
	}

	rec := &evidex.Recognition{Text: b.String()}
	if n > 0 {
		rec.Confidence = sum / float64(n) / 100
	}
	return rec
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
