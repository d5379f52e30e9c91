package main

import (
	"bytes"
	"context"
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/chazu/tenon/pkg/config"
	"github.com/chazu/tenon/pkg/document"
	"github.com/chazu/tenon/pkg/engine"
	"github.com/chazu/tenon/pkg/export"
	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/kernel/sdfx"
	"github.com/chazu/tenon/pkg/tessellate"
	"github.com/chazu/tenon/pkg/validate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
	logger *zap.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// ExportResult carries an encoded model file back to the frontend. Data
// is base64 so binary formats survive the JSON bridge.
type ExportResult struct {
	Format string          `json:"format"`
	Data   string          `json:"data"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with an engine and the sdfx kernel. Settings
// come from tenon.yaml in the working directory when present.
func NewApp() *App {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load("tenon.yaml")
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
		cfg = config.Default()
	}

	k := sdfx.NewWithCells(cfg.Kernel.MeshCells)
	return &App{
		engine: engine.NewEngineWithConfig(k, cfg.EvalTimeout(), cfg.Kernel.Segments),
		kernel: k,
		logger: logger,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	doc, ok := a.buildDocument(source, &result)
	if !ok {
		return result
	}

	// Structural validation. Errors block tessellation; warnings are
	// reported but the model still renders.
	blocked := false
	for _, issue := range validate.Document(doc) {
		data := EvalErrorData{Message: issue.Error()}
		if issue.Severity == validate.SeverityError {
			result.Errors = append(result.Errors, data)
			blocked = true
		} else {
			result.Warnings = append(result.Warnings, data)
		}
	}
	if blocked {
		return result
	}

	meshes, err := tessellate.Parts(doc.Parts())
	if err != nil {
		a.logger.Error("tessellation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}

	return result
}

// Export evaluates the source and encodes the resulting model in the
// given format (see Formats).
func (a *App) Export(source, format string) ExportResult {
	result := ExportResult{Format: format, Errors: []EvalErrorData{}}

	eval := EvalResult{Errors: []EvalErrorData{}}
	doc, ok := a.buildDocument(source, &eval)
	if !ok {
		result.Errors = eval.Errors
		return result
	}

	var buf bytes.Buffer
	if err := doc.Export(format, &buf); err != nil {
		a.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	result.Data = base64.StdEncoding.EncodeToString(buf.Bytes())
	return result
}

// Formats returns the supported export format names.
func (a *App) Formats() []string {
	return export.Formats()
}

// buildDocument runs the engine and converts any failures into the
// frontend error format. It returns false when evaluation failed.
func (a *App) buildDocument(source string, result *EvalResult) (*document.Document, bool) {
	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return nil, false
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, false
	}

	return d, true
}
