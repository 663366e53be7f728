package importer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

// Failure is one file that could not be imported.
type Failure struct {
	Path string
	Err  error
}

// Title and Message describe the failure for the operator.
func (f Failure) Title() string {
	var pe *novaexport.ParseError
	if errors.As(f.Err, &pe) {
		return pe.Title()
	}
	return "Error"
}

func (f Failure) Message() string {
	var pe *novaexport.ParseError
	if errors.As(f.Err, &pe) {
		return pe.Message()
	}
	return fmt.Sprintf("Error loading file:\n%s\n\n%v", f.Path, f.Err)
}

// Batch is the outcome of one import: the files that parsed, in input order,
// and the ones that did not.
type Batch struct {
	Recordings []*novaexport.Recording
	Failures   []Failure
}

// Importer parses cycling exports into recordings
type Importer struct {
	opts novaexport.Options
	log  *logrus.Logger
}

// New creates a new importer
func New(opts novaexport.Options, log *logrus.Logger) *Importer {
	return &Importer{opts: opts, log: log}
}

// Import parses every path. A file that fails is logged and recorded in
// Failures; the rest still load.
func (i *Importer) Import(paths []string, progress ProgressCallback) Batch {
	var batch Batch
	for _, path := range paths {
		rec, err := novaexport.ParseFile(path, i.opts)
		if err != nil {
			i.logFailure(path, err)
			batch.Failures = append(batch.Failures, Failure{Path: path, Err: err})
			if progress != nil {
				progress.Update(filepath.Base(path), "failed")
			}
			continue
		}

		i.log.WithFields(logrus.Fields{
			"file": rec.Name,
			"rows": rec.Rows(),
			"size": humanize.Bytes(uint64(rec.Size)),
		}).Debug("Imported recording")

		if rec.HeaderFallback {
			i.log.WithField("file", rec.Name).Warn("No marker header found, used the first line as header")
		}
		batch.Recordings = append(batch.Recordings, rec)

		if progress != nil {
			progress.Update(rec.Name, fmt.Sprintf("%s rows", humanize.Comma(int64(rec.Rows()))))
		}
	}
	if progress != nil {
		progress.Finish()
	}
	return batch
}

// ImportDirectory imports all .txt exports from a directory tree
func (i *Importer) ImportDirectory(dirPath string, progress ProgressCallback) (Batch, error) {
	files, err := ExpandPaths([]string{dirPath})
	if err != nil {
		return Batch{}, err
	}
	return i.Import(files, progress), nil
}

// ExpandPaths replaces every directory in args with the .txt files below it,
// in lexical order. Plain files are kept as given.
func ExpandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// missing files fail later, during parsing, with the usual taxonomy
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".txt") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory: %w", err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func (i *Importer) logFailure(path string, err error) {
	fields := logrus.Fields{"file": path}
	var pe *novaexport.ParseError
	if errors.As(err, &pe) {
		fields["kind"] = pe.Title()
	}
	i.log.WithFields(fields).Warnf("Skipping file: %v", err)
}
