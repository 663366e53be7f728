package novaexport

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column names written by the potentiostat software.
const (
	ColumnTime          = "Time (s)"
	ColumnCorrectedTime = "Corrected time (s)"
	ColumnPotential     = "WE(1).Potential (V)"
	ColumnCurrent       = "WE(1).Current (A)"
)

const (
	headerMarkerTime      = "Corrected time"
	headerMarkerPotential = "Potential"
)

// Options controls how exports are read.
type Options struct {
	// StrictHeader rejects files without a "Corrected time"/"Potential" header
	// line. When false the first non-blank line is used as the header instead.
	StrictHeader bool
}

// Recording is one parsed export. Missing or non-numeric cells are NaN.
type Recording struct {
	Path    string
	Name    string
	Size    int64
	Columns []string

	Time          []float64 // raw "Time (s)", nil if absent
	CorrectedTime []float64
	Potential     []float64 // nil if absent
	Current       []float64 // nil if absent

	// TimeDerived is set when CorrectedTime was computed from Time.
	TimeDerived bool
	// HeaderFallback is set when no marker line existed and the first line was used.
	HeaderFallback bool
}

// Rows returns the number of data rows.
func (r *Recording) Rows() int {
	return len(r.CorrectedTime)
}

func (r *Recording) HasPotential() bool {
	return r.Potential != nil
}

func (r *Recording) HasCurrent() bool {
	return r.Current != nil
}

// ParseFile parses a tab-separated cycling export from disk.
func ParseFile(path string, opts Options) (rec *Recording, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, newParseError(path, ErrUnreadableFile, ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = newParseError(path, ErrUnreadableFile, fmt.Errorf("failed to close file: %w", cerr))
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, newParseError(path, ErrUnreadableFile, fmt.Errorf("failed to stat file: %w", err))
	}

	rec, err = Parse(file, path, opts)
	if err != nil {
		return nil, err
	}
	rec.Size = info.Size()
	return rec, nil
}

// Parse reads an export from r. path is used for naming and error reports only.
func Parse(r io.Reader, path string, opts Options) (*Recording, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, newParseError(path, ErrUnreadableFile, err)
	}

	fallback := false
	headerIdx := findHeader(lines)
	if headerIdx < 0 {
		if opts.StrictHeader {
			return nil, newParseError(path, ErrNoHeaderFound, nil)
		}
		headerIdx = firstNonBlank(lines)
		if headerIdx < 0 {
			return nil, newParseError(path, ErrEmptyOrTooShort, nil)
		}
		fallback = true
	}

	header := splitFields(lines[headerIdx])
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	if _, ok := index[ColumnPotential]; fallback && !ok {
		return nil, newParseError(path, ErrNoHeaderFound, nil)
	}

	var rows [][]string
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitFields(line))
	}

	if len(rows) < 2 {
		return nil, newParseError(path, ErrEmptyOrTooShort, nil)
	}

	_, hasTime := index[ColumnTime]
	_, hasCorrected := index[ColumnCorrectedTime]
	if !hasTime && !hasCorrected {
		return nil, newParseError(path, ErrMissingTimeColumn, nil)
	}

	rec := &Recording{
		Path:           path,
		Name:           filepath.Base(path),
		Columns:        header,
		Time:           column(rows, index, ColumnTime),
		CorrectedTime:  column(rows, index, ColumnCorrectedTime),
		Potential:      column(rows, index, ColumnPotential),
		Current:        column(rows, index, ColumnCurrent),
		HeaderFallback: fallback,
	}

	if rec.CorrectedTime == nil {
		rec.CorrectedTime = CorrectTime(rec.Time)
		rec.TimeDerived = true
	}

	return rec, nil
}

// CorrectTime turns raw timestamps into elapsed time starting at 0 by summing
// successive differences. The first difference is 0, and missing values or
// backwards steps add nothing, so the result never decreases.
func CorrectTime(raw []float64) []float64 {
	out := make([]float64, len(raw))
	var elapsed float64
	for i := 1; i < len(raw); i++ {
		d := raw[i] - raw[i-1]
		if d > 0 && !math.IsInf(d, 0) {
			elapsed += d
		}
		out[i] = elapsed
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	// BOMOverride strips a UTF-8 BOM and decodes UTF-16 when a UTF-16 BOM is present.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return lines, nil
}

func findHeader(lines []string) int {
	for i, line := range lines {
		if strings.Contains(line, headerMarkerTime) && strings.Contains(line, headerMarkerPotential) {
			return i
		}
	}
	return -1
}

func firstNonBlank(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return i
		}
	}
	return -1
}

func splitFields(line string) []string {
	fields := strings.Split(line, "\t")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func column(rows [][]string, index map[string]int, name string) []float64 {
	col, ok := index[name]
	if !ok {
		return nil
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = parseCell(row, col)
	}
	return values
}

func parseCell(row []string, col int) float64 {
	if col >= len(row) || row[col] == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(row[col], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
