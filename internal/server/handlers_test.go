package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// callTool sends a tools/call request and decodes the text content of the
// response into result
func callTool(t *testing.T, s *Server, name string, args interface{}, result interface{}) *MCPResponse {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	paramsJSON, err := json.Marshal(ToolCallParams{Name: name, Arguments: argsJSON})
	if err != nil {
		t.Fatal(err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp.Error != nil || result == nil {
		return resp
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	text := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), result); err != nil {
		t.Fatalf("Failed to decode tool result: %v\n%s", err, text)
	}
	return resp
}

func TestSimulateFile(t *testing.T) {
	s, cfg := newTestServer(t, map[string]string{"diagram.json": testAnnotation})
	annPath := filepath.Join(cfg.Paths.AnnotationDir, "diagram.json")

	var result struct {
		Skipped bool `json:"skipped"`
		Result  struct {
			OutputImage      string `json:"output_image"`
			OutputAnnotation string `json:"output_annotation"`
			Rewrite          struct {
				Arrows    int `json:"arrows"`
				Relations int `json:"relations"`
			} `json:"rewrite"`
		} `json:"result"`
	}
	resp := callTool(t, s, "inhibit_simulate_file", map[string]interface{}{"annotation": annPath}, &result)
	if resp.Error != nil {
		t.Fatalf("simulate failed: %v", resp.Error.Data)
	}

	if result.Skipped {
		t.Fatal("Expected the diagram to be simulated")
	}
	if result.Result.Rewrite.Arrows != 1 || result.Result.Rewrite.Relations != 1 {
		t.Errorf("Expected 1 arrow and 1 relation rewritten, got %+v", result.Result.Rewrite)
	}
	for _, p := range []string{result.Result.OutputImage, result.Result.OutputAnnotation} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected output %s: %v", p, err)
		}
	}
	if s.cache.Len() != 0 {
		t.Errorf("Expected the source image to be evicted, cache holds %d", s.cache.Len())
	}
}

func TestSimulateFile_Skipped(t *testing.T) {
	s, cfg := newTestServer(t, map[string]string{"empty.json": unmatchedAnnotation})

	var result struct {
		Skipped bool   `json:"skipped"`
		Reason  string `json:"reason"`
	}
	resp := callTool(t, s, "inhibit_simulate_file", map[string]interface{}{
		"annotation": filepath.Join(cfg.Paths.AnnotationDir, "empty.json"),
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Expected a skip, got error %v", resp.Error.Data)
	}
	if !result.Skipped || result.Reason == "" {
		t.Errorf("Expected a skipped result with a reason, got %+v", result)
	}

	entries, _ := os.ReadDir(cfg.Paths.OutputImageDir)
	if len(entries) != 0 {
		t.Errorf("Expected no output images, got %d", len(entries))
	}
	if s.cache.Len() != 0 {
		t.Errorf("Expected the skipped image to be evicted, cache holds %d", s.cache.Len())
	}
}

func TestSimulateFile_Errors(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing annotation", map[string]interface{}{}},
		{"nonexistent annotation", map[string]interface{}{"annotation": "/nonexistent/a.json"}},
		{"wrong type", map[string]interface{}{"annotation": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "inhibit_simulate_file", tt.args, nil)
			if resp.Error == nil || resp.Error.Code != codeToolFailed {
				t.Errorf("Expected tool failure, got %+v", resp)
			}
		})
	}
}

func TestSimulateBatch(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{
		"diagram.json": testAnnotation,
		"empty.json":   unmatchedAnnotation,
		"broken.json":  `{"shapes": [`,
	})

	var sum struct {
		Files     int               `json:"files"`
		Processed int               `json:"processed"`
		Skipped   int               `json:"skipped"`
		Failed    int               `json:"failed"`
		Errors    map[string]string `json:"errors"`
	}
	resp := callTool(t, s, "inhibit_simulate_batch", map[string]interface{}{"workers": 2}, &sum)
	if resp.Error != nil {
		t.Fatalf("batch failed: %v", resp.Error.Data)
	}

	if sum.Files != 3 || sum.Processed != 1 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", sum)
	}
	if _, ok := sum.Errors["broken.json"]; !ok {
		t.Errorf("Expected broken.json in errors, got %v", sum.Errors)
	}
	if s.cache.Len() != 0 {
		t.Errorf("Expected every batch image to be evicted, cache holds %d", s.cache.Len())
	}
}

func TestSimulateBatch_MissingDir(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := callTool(t, s, "inhibit_simulate_batch", map[string]interface{}{"annotation_dir": "/nonexistent"}, nil)
	if resp.Error == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}

func TestMatchArrows(t *testing.T) {
	s, cfg := newTestServer(t, map[string]string{"diagram.json": testAnnotation})

	var result struct {
		Image string `json:"image"`
		Stats struct {
			Arrows   int `json:"arrows"`
			Accepted int `json:"accepted"`
		} `json:"stats"`
		Matches []struct {
			Index string    `json:"index"`
			Link  string    `json:"link"`
			Score int       `json:"score"`
			Rect  []float64 `json:"rect"`
		} `json:"matches"`
	}
	resp := callTool(t, s, "inhibit_match_arrows", map[string]interface{}{
		"annotation": filepath.Join(cfg.Paths.AnnotationDir, "diagram.json"),
	}, &result)
	if resp.Error != nil {
		t.Fatalf("match failed: %v", resp.Error.Data)
	}

	if result.Stats.Arrows != 1 || len(result.Matches) != 1 {
		t.Fatalf("Expected one matched arrow, got %+v", result)
	}
	m := result.Matches[0]
	if m.Index != "1" || m.Link != "r1" {
		t.Errorf("Expected arrow 1 linked to r1, got %s/%s", m.Index, m.Link)
	}
	if m.Score <= 0 {
		t.Errorf("Expected a positive score, got %d", m.Score)
	}
	if len(m.Rect) != 5 {
		t.Errorf("Expected a flat rotated rect, got %v", m.Rect)
	}

	// matching writes nothing and keeps nothing cached
	if _, err := os.Stat(cfg.Paths.OutputImageDir); !os.IsNotExist(err) {
		t.Errorf("Expected no output directory, got %v", err)
	}
	if s.cache.Len() != 0 {
		t.Errorf("Expected the matched image to be evicted, cache holds %d", s.cache.Len())
	}
}

func TestSimulateFile_FailureEvicts(t *testing.T) {
	s, cfg := newTestServer(t, map[string]string{"diagram.json": testAnnotation})
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.sim.OutputAnnotationDir = blocker

	resp := callTool(t, s, "inhibit_simulate_file", map[string]interface{}{
		"annotation": filepath.Join(cfg.Paths.AnnotationDir, "diagram.json"),
	}, nil)
	if resp.Error == nil {
		t.Fatal("Expected the annotation write to fail")
	}
	if s.cache.Len() != 0 {
		t.Errorf("Expected the image to be evicted after a failure, cache holds %d", s.cache.Len())
	}
}

func TestMatchArrows_InvalidCeiling(t *testing.T) {
	s, cfg := newTestServer(t, map[string]string{"diagram.json": testAnnotation})
	resp := callTool(t, s, "inhibit_match_arrows", map[string]interface{}{
		"annotation":    filepath.Join(cfg.Paths.AnnotationDir, "diagram.json"),
		"ceiling_ratio": 1.5,
	}, nil)
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "ceiling_ratio") {
		t.Errorf("Expected a ceiling_ratio error, got %+v", resp)
	}
}

func TestGeometry(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var marker struct {
		Anchor struct{ X, Y int } `json:"anchor"`
		Tick   [2]struct{ X, Y int }
		Box    [4]struct{ X, Y int } `json:"box"`
	}
	resp := callTool(t, s, "inhibit_geometry", map[string]interface{}{
		"rect": []float64{100, 100, 40, 10, 0},
		"head": [][]float64{{95, 95}, {105, 105}},
	}, &marker)
	if resp.Error != nil {
		t.Fatalf("geometry failed: %v", resp.Error.Data)
	}

	if marker.Anchor.X != 80 || marker.Anchor.Y != 100 {
		t.Errorf("Expected anchor (80,100), got %+v", marker.Anchor)
	}
	if marker.Tick[0].X != 80 || marker.Tick[0].Y != 95 || marker.Tick[1].Y != 105 {
		t.Errorf("Expected tick (80,95)-(80,105), got %+v", marker.Tick)
	}
	if marker.Box[0].X != 70 || marker.Box[0].Y != 90 || marker.Box[2].X != 90 || marker.Box[2].Y != 110 {
		t.Errorf("Unexpected box %+v", marker.Box)
	}
}

func TestGeometry_DegenerateHead(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := callTool(t, s, "inhibit_geometry", map[string]interface{}{
		"rect": []float64{100, 100, 40, 10, 0},
		"head": [][]float64{{95, 95}, {95, 95}},
	}, nil)
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "inhibit geometry") {
		t.Errorf("Expected a geometry error, got %+v", resp)
	}
}

func TestUnknownTool(t *testing.T) {
	s, _ := newTestServer(t, nil)
	resp := callTool(t, s, "image_load", map[string]interface{}{}, nil)
	if resp.Error == nil || !strings.Contains(resp.Error.Data.(string), "unknown tool") {
		t.Errorf("Expected unknown tool error, got %+v", resp)
	}
}
