package importer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/cyclerider/internal/core/logging"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

const testdata = "../../../pkg/novaexport/testdata"

type recordingProgress struct {
	names    []string
	details  []string
	finished bool
}

func (r *recordingProgress) Update(name, detail string) {
	r.names = append(r.names, name)
	r.details = append(r.details, detail)
}

func (r *recordingProgress) Finish() { r.finished = true }

func TestImport(t *testing.T) {
	imp := New(novaexport.Options{}, logging.Discard())
	progress := &recordingProgress{}

	batch := imp.Import([]string{
		filepath.Join(testdata, "charge (1).txt"),
		filepath.Join(testdata, "no_header.txt"),
		filepath.Join(testdata, "discharge (1).txt"),
		filepath.Join(testdata, "empty.txt"),
	}, progress)

	require.Len(t, batch.Recordings, 2)
	assert.Equal(t, "charge (1).txt", batch.Recordings[0].Name)
	assert.Equal(t, "discharge (1).txt", batch.Recordings[1].Name)

	require.Len(t, batch.Failures, 2)
	assert.True(t, errors.Is(batch.Failures[0].Err, novaexport.ErrNoHeaderFound))
	assert.Equal(t, "No header", batch.Failures[0].Title())
	assert.Contains(t, batch.Failures[0].Message(), "no_header.txt")
	assert.True(t, errors.Is(batch.Failures[1].Err, novaexport.ErrEmptyOrTooShort))

	assert.Equal(t, []string{"charge (1).txt", "no_header.txt", "discharge (1).txt", "empty.txt"}, progress.names)
	assert.Equal(t, "4 rows", progress.details[0])
	assert.Equal(t, "failed", progress.details[1])
	assert.True(t, progress.finished)
}

func TestImport_MissingFile(t *testing.T) {
	imp := New(novaexport.Options{}, logging.Discard())

	batch := imp.Import([]string{filepath.Join(t.TempDir(), "gone.txt")}, nil)

	assert.Empty(t, batch.Recordings)
	require.Len(t, batch.Failures, 1)
	assert.True(t, errors.Is(batch.Failures[0].Err, novaexport.ErrUnreadableFile))
	assert.Equal(t, "Error", batch.Failures[0].Title())
}

func TestFailure_PlainError(t *testing.T) {
	f := Failure{Path: "x.txt", Err: errors.New("boom")}
	assert.Equal(t, "Error", f.Title())
	assert.Contains(t, f.Message(), "x.txt")
	assert.Contains(t, f.Message(), "boom")
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "run2")
	require.NoError(t, os.MkdirAll(sub, 0755))
	for _, name := range []string{"b (2).txt", "a (1).TXT", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c (3).txt"), nil, 0644))

	files, err := ExpandPaths([]string{"single.txt", dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"single.txt",
		filepath.Join(dir, "a (1).TXT"),
		filepath.Join(dir, "b (2).txt"),
		filepath.Join(sub, "c (3).txt"),
	}, files)
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"charge (1).txt", "discharge (1).txt"} {
		data, err := os.ReadFile(filepath.Join(testdata, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}

	batch, err := New(novaexport.Options{}, logging.Discard()).ImportDirectory(dir, nil)
	require.NoError(t, err)
	assert.Len(t, batch.Recordings, 2)
	assert.Empty(t, batch.Failures)
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 2)

	p.Update("charge (1).txt", "4 rows")
	assert.Contains(t, buf.String(), "50%")
	assert.Contains(t, buf.String(), "(1/2)")
	assert.Contains(t, buf.String(), "charge (1).txt (4 rows)")

	p.Update(strings.Repeat("x", 100), "")
	assert.Contains(t, buf.String(), "100%")
	assert.Len(t, p.lastMsg, 60)

	p.Finish()
	assert.Contains(t, buf.String(), "Read 2 files")
}

func TestProgressReporter_TruncatesMultibyteNames(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 1)

	p.Update(strings.Repeat("µ", 80)+".txt", "12 rows")
	assert.True(t, utf8.ValidString(buf.String()))
	assert.True(t, strings.HasSuffix(p.lastMsg, "..."))
	assert.LessOrEqual(t, runewidth.StringWidth(p.lastMsg), 60)
}

func TestProgressReporter_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporter(&buf, 0)
	p.Update("a", "")
	p.Finish()
	assert.Empty(t, buf.String())
}
