package tui

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/export"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/plot"
)

type errMsg struct {
	err error
}

type recordingsLoadedMsg struct {
	batch importer.Batch
}

type exportWrittenMsg struct {
	path   string
	cycles int
}

type exportCopiedMsg struct {
	cycles int
}

type plotsWrittenMsg struct {
	paths []string
}

func importFiles(imp *importer.Importer, args []string) tea.Cmd {
	return func() tea.Msg {
		files, err := importer.ExpandPaths(args)
		if err != nil {
			return errMsg{err}
		}
		return recordingsLoadedMsg{batch: imp.Import(files, nil)}
	}
}

func writeExport(path string, segs []cycles.Segment) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return errMsg{fmt.Errorf("failed to create export: %w", err)}
		}
		if err := export.Write(f, segs); err != nil {
			_ = f.Close()
			return errMsg{err}
		}
		if err := f.Close(); err != nil {
			return errMsg{fmt.Errorf("failed to write export: %w", err)}
		}
		return exportWrittenMsg{path: path, cycles: len(export.Rows(segs))}
	}
}

func copyExport(segs []cycles.Segment) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(export.Format(segs)); err != nil {
			return errMsg{fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return exportCopiedMsg{cycles: len(export.Rows(segs))}
	}
}

func writePlots(dir string, res cycles.Result, opts plot.Options) tea.Cmd {
	return func() tea.Msg {
		paths, err := plot.WriteFiles(dir, res, opts)
		if err != nil {
			return errMsg{fmt.Errorf("failed to write charts: %w", err)}
		}
		return plotsWrittenMsg{paths: paths}
	}
}
