package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang/geo/r2"

	"github.com/santhosh11wnl/Sai/internal/annotation"
	"github.com/santhosh11wnl/Sai/internal/detection"
	"github.com/santhosh11wnl/Sai/internal/geometry"
	"github.com/santhosh11wnl/Sai/internal/inhibit"
	"github.com/santhosh11wnl/Sai/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "inhibit_simulate_file").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Simulation
	case "inhibit_simulate_file":
		return s.handleSimulateFile(args)
	case "inhibit_simulate_batch":
		return s.handleSimulateBatch(args)

	// Inspection
	case "inhibit_match_arrows":
		return s.handleMatchArrows(args)
	case "inhibit_geometry":
		return s.handleGeometry(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, dst interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Simulation Handlers ===

type simulateFileArgs struct {
	Annotation string `json:"annotation"`
}

type simulateFileResult struct {
	Skipped bool                 `json:"skipped"`
	Reason  string               `json:"reason,omitempty"`
	Result  *pipeline.FileResult `json:"result,omitempty"`
}

func (s *Server) handleSimulateFile(args json.RawMessage) (interface{}, error) {
	var a simulateFileArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Annotation == "" {
		return nil, errors.New("annotation is required")
	}

	res, err := s.sim.ProcessFile(a.Annotation)
	if errors.Is(err, pipeline.ErrSkip) {
		return simulateFileResult{Skipped: true, Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return simulateFileResult{Result: res}, nil
}

type simulateBatchArgs struct {
	AnnotationDir string `json:"annotation_dir"`
	Workers       int    `json:"workers"`
}

func (s *Server) handleSimulateBatch(args json.RawMessage) (interface{}, error) {
	var a simulateBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.AnnotationDir == "" {
		a.AnnotationDir = s.cfg.Paths.AnnotationDir
	}
	if a.Workers == 0 {
		a.Workers = s.cfg.Simulation.Workers
	}

	b := &pipeline.Batch{Simulator: s.sim, AnnotationDir: a.AnnotationDir, Workers: a.Workers}
	return b.Run(context.Background())
}

// === Inspection Handlers ===

type matchArrowsArgs struct {
	Annotation   string  `json:"annotation"`
	CeilingRatio float64 `json:"ceiling_ratio"`
}

type matchedArrow struct {
	Index   string               `json:"index"`
	Link    string               `json:"link,omitempty"`
	Head    []r2.Point           `json:"head"`
	Contour int                  `json:"contour"`
	Score   int                  `json:"score"`
	Rect    geometry.RotatedRect `json:"rect"`
}

type matchArrowsResult struct {
	Image   string               `json:"image"`
	Stats   detection.MatchStats `json:"stats"`
	Matches []matchedArrow       `json:"matches"`
}

func (s *Server) handleMatchArrows(args json.RawMessage) (interface{}, error) {
	var a matchArrowsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Annotation == "" {
		return nil, errors.New("annotation is required")
	}
	if a.CeilingRatio == 0 {
		a.CeilingRatio = s.sim.CeilingRatio
	}
	if a.CeilingRatio < 0 || a.CeilingRatio > 1 {
		return nil, fmt.Errorf("ceiling_ratio must be in (0, 1], got %v", a.CeilingRatio)
	}

	file, err := annotation.Load(a.Annotation)
	if err != nil {
		return nil, &pipeline.AnnotationLoadError{Path: a.Annotation, Err: err}
	}
	imgPath := filepath.Join(s.sim.ImageDir, file.ImagePath)
	img, err := s.cache.Load(imgPath)
	if err != nil {
		return nil, &pipeline.AnnotationLoadError{Path: imgPath, Err: err}
	}
	defer s.cache.Evict(imgPath)

	var texts []*annotation.Shape
	for _, c := range s.sim.TextCategories {
		texts = append(texts, file.ShapesFor(c)...)
	}
	matches, stats, err := s.sim.Matcher.Match(img, file.ShapesFor(annotation.CategoryActivate), texts, a.CeilingRatio)
	if err != nil {
		return nil, err
	}

	result := matchArrowsResult{Image: imgPath, Stats: stats, Matches: make([]matchedArrow, 0, len(matches))}
	for _, m := range matches {
		result.Matches = append(result.Matches, matchedArrow{
			Index:   m.Arrow.Index,
			Link:    m.Arrow.Link,
			Head:    m.Head,
			Contour: m.Contour,
			Score:   m.Score,
			Rect:    m.Rect,
		})
	}
	return result, nil
}

type geometryArgs struct {
	Rect geometry.RotatedRect `json:"rect"`
	Head [][2]float64         `json:"head"`
}

func (s *Server) handleGeometry(args json.RawMessage) (interface{}, error) {
	var a geometryArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	head := make([]r2.Point, len(a.Head))
	for i, p := range a.Head {
		head[i] = r2.Point{X: p[0], Y: p[1]}
	}
	return inhibit.Synthesize(a.Rect, head)
}
