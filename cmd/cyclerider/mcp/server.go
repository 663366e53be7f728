package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/neilberkman/cyclerider/internal/core/config"
	"github.com/neilberkman/cyclerider/internal/core/cycles"
	"github.com/neilberkman/cyclerider/internal/core/export"
	"github.com/neilberkman/cyclerider/internal/core/importer"
	"github.com/neilberkman/cyclerider/internal/core/models"
	"github.com/neilberkman/cyclerider/internal/core/session"
	"github.com/neilberkman/cyclerider/internal/core/summary"
	"github.com/neilberkman/cyclerider/pkg/novaexport"
)

// AnalyzeArgs defines arguments for the analyze_recordings tool
type AnalyzeArgs struct {
	Paths       []string `json:"paths" jsonschema:"description=Export files or directories to import,required"`
	Current     *float64 `json:"current,omitempty" jsonschema:"description=Current in A for files without a current column"`
	Volume      *float64 `json:"volume,omitempty" jsonschema:"description=Sample volume in L"`
	ChargeFirst *bool    `json:"charge_first,omitempty" jsonschema:"description=Process charge before discharge for files with the same number"`
	Pairing     string   `json:"pairing,omitempty" jsonschema:"description=Efficiency pairing: adjacent or by-cycle"`
}

// ExportArgs defines arguments for the export_cycles tool
type ExportArgs struct {
	AnalyzeArgs
	Output string `json:"output,omitempty" jsonschema:"description=Write the table to this file instead of returning it"`
}

// InspectArgs defines arguments for the inspect_recording tool
type InspectArgs struct {
	Path string `json:"path" jsonschema:"description=Export file to inspect,required"`
}

// FailureInfo is a file that could not be imported
type FailureInfo struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// AnalysisResult is the analyze_recordings response
type AnalysisResult struct {
	Segments   []cycles.Segment         `json:"segments"`
	Cycles     []export.Row             `json:"cycles"`
	Efficiency []cycles.EfficiencyPoint `json:"efficiency"`
	Skipped    []string                 `json:"skipped,omitempty"`
	Failures   []FailureInfo            `json:"failures,omitempty"`
	Summary    string                   `json:"summary"`
}

// RecordingInfo is the inspect_recording response
type RecordingInfo struct {
	Path           string   `json:"path"`
	Name           string   `json:"name"`
	SizeBytes      int64    `json:"size_bytes"`
	Rows           int      `json:"rows"`
	Columns        []string `json:"columns"`
	FileNumber     int      `json:"file_number"`
	TimeDerived    bool     `json:"time_derived"`
	HeaderFallback bool     `json:"header_fallback"`
	HasPotential   bool     `json:"has_potential"`
	HasCurrent     bool     `json:"has_current"`
	TrendV         float64  `json:"trend_v,omitempty"`
	Type           string   `json:"type,omitempty"`
}

// StartServer starts the MCP server on stdio
func StartServer(cfg *config.Config, log *logrus.Logger) error {
	return server.ServeStdio(NewServer(cfg, log))
}

// NewServer registers the tools. Every call imports its files afresh; nothing
// is kept between calls.
func NewServer(cfg *config.Config, log *logrus.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"CycleRider",
		"1.0.0",
	)

	analyzeTool := mcp.NewTool("analyze_recordings",
		mcp.WithDescription("Import potentiostat charge/discharge exports and derive capacity, energy, energy density, average voltage and Coulombic efficiency per cycle"),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("Export files or directories (directories are searched for .txt files)"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithNumber("current",
			mcp.Description("Current in A for files without a current column (default from config)")),
		mcp.WithNumber("volume",
			mcp.Description("Sample volume in L; 0 or less disables energy density")),
		mcp.WithBoolean("charge_first",
			mcp.Description("Process charge before discharge for files with the same number (default: true)")),
		mcp.WithString("pairing",
			mcp.Description("Efficiency pairing: 'adjacent' (processing order) or 'by-cycle'")),
	)
	s.AddTool(analyzeTool, makeAnalyzeHandler(cfg, log))

	exportTool := mcp.NewTool("export_cycles",
		mcp.WithDescription("Build the tab-separated per-cycle table (capacity, efficiency, energy, voltage, energy density) for a set of exports"),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("Export files or directories"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithNumber("current",
			mcp.Description("Current in A for files without a current column")),
		mcp.WithNumber("volume",
			mcp.Description("Sample volume in L")),
		mcp.WithBoolean("charge_first",
			mcp.Description("Process charge before discharge for files with the same number")),
		mcp.WithString("output",
			mcp.Description("Optional file path to write the table to; the table is returned when omitted")),
	)
	s.AddTool(exportTool, makeExportHandler(cfg, log))

	inspectTool := mcp.NewTool("inspect_recording",
		mcp.WithDescription("Parse one export and report its columns, row count, file number and potential trend"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Export file to inspect")),
	)
	s.AddTool(inspectTool, makeInspectHandler(cfg))

	return s
}

func parseArgs(request mcp.CallToolRequest, dst any) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	if err := json.Unmarshal(argsBytes, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// resolve applies the call's overrides on top of the config.
func resolve(cfg *config.Config, args AnalyzeArgs) (models.Params, bool, models.Pairing, error) {
	params := cfg.Params()
	if args.Current != nil {
		params.CurrentA = *args.Current
	}
	if args.Volume != nil {
		params.VolumeL = *args.Volume
	}
	if err := params.Validate(); err != nil {
		return params, false, "", err
	}

	chargeFirst := cfg.ChargeFirst
	if args.ChargeFirst != nil {
		chargeFirst = *args.ChargeFirst
	}

	pairing := cfg.Pairing
	if args.Pairing != "" {
		p, err := models.ParsePairing(args.Pairing)
		if err != nil {
			return params, false, "", err
		}
		pairing = p
	}
	return params, chargeFirst, pairing, nil
}

func load(cfg *config.Config, log *logrus.Logger, paths []string, chargeFirst bool) (*session.Session, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths given")
	}
	files, err := importer.ExpandPaths(paths)
	if err != nil {
		return nil, err
	}
	imp := importer.New(novaexport.Options{StrictHeader: cfg.StrictHeader}, log)

	s := session.New(chargeFirst)
	s.Replace(imp.Import(files, nil))
	return s, nil
}

func failureInfo(failures []importer.Failure) []FailureInfo {
	var out []FailureInfo
	for _, f := range failures {
		out = append(out, FailureInfo{Path: f.Path, Kind: f.Title(), Error: f.Message()})
	}
	return out
}

func makeAnalyzeHandler(cfg *config.Config, log *logrus.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AnalyzeArgs
		if err := parseArgs(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		params, chargeFirst, pairing, err := resolve(cfg, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}

		s, err := load(cfg, log, args.Paths, chargeFirst)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
		}

		res := s.Analyze(params)
		text, err := summary.Render(cfg.SummaryTemplate, res, params, pairing)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := AnalysisResult{
			Segments:   res.Segments,
			Cycles:     export.Rows(res.Segments),
			Efficiency: cycles.Efficiencies(res.Segments, pairing),
			Skipped:    res.Skipped,
			Failures:   failureInfo(s.Failures()),
			Summary:    text,
		}

		resultJSON, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeExportHandler(cfg *config.Config, log *logrus.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExportArgs
		if err := parseArgs(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		params, chargeFirst, _, err := resolve(cfg, args.AnalyzeArgs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
		}

		s, err := load(cfg, log, args.Paths, chargeFirst)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("import failed: %v", err)), nil
		}

		segs := s.Analyze(params).Segments
		if len(segs) == 0 {
			return mcp.NewToolResultError("no cycles to export"), nil
		}

		table := export.Format(segs)
		if args.Output == "" {
			return mcp.NewToolResultText(table), nil
		}

		if err := os.MkdirAll(filepath.Dir(args.Output), 0o755); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create directory: %v", err)), nil
		}
		if err := os.WriteFile(args.Output, []byte(table), 0o644); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to write export: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Wrote %d cycles to %s", len(export.Rows(segs)), args.Output)), nil
	}
}

func makeInspectHandler(cfg *config.Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args InspectArgs
		if err := parseArgs(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}

		rec, err := novaexport.ParseFile(args.Path, novaexport.Options{StrictHeader: cfg.StrictHeader})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		info := RecordingInfo{
			Path:           rec.Path,
			Name:           rec.Name,
			SizeBytes:      rec.Size,
			Rows:           rec.Rows(),
			Columns:        rec.Columns,
			FileNumber:     cycles.FileNumber(rec.Path),
			TimeDerived:    rec.TimeDerived,
			HeaderFallback: rec.HeaderFallback,
			HasPotential:   rec.HasPotential(),
			HasCurrent:     rec.HasCurrent(),
		}
		if rec.HasPotential() {
			info.TrendV = cycles.Trend(rec.Potential)
			info.Type = string(cycles.ClassifyTrend(info.TrendV))
		}

		resultJSON, err := json.Marshal(info)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
