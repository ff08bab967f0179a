package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pointSchema = map[string]interface{}{
	"type":     "array",
	"items":    map[string]interface{}{"type": "number"},
	"minItems": 2,
	"maxItems": 2,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Simulation
		{
			Name:        "inhibit_simulate_file",
			Description: "Replace the matched activate arrows of one annotated diagram with inhibit markers. Writes sim_inhibit_ prefixed image and annotation files and returns their paths and match statistics. Nothing is written when no arrow matches.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"annotation": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the labelme annotation file",
					},
				},
				"required": []string{"annotation"},
			},
		},
		{
			Name:        "inhibit_simulate_batch",
			Description: "Run the simulation over every .json annotation of a directory and return a summary of processed, skipped and failed files.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"annotation_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory of annotation files. Defaults to the configured annotation directory",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of files processed at once. Defaults to the configured worker count",
						"minimum":     1,
					},
				},
			},
		},

		// Inspection
		{
			Name:        "inhibit_match_arrows",
			Description: "Match the activate arrows of an annotated diagram to image contours without writing anything. Returns each accepted arrow with its score and minimum-area rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"annotation": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the labelme annotation file",
					},
					"ceiling_ratio": map[string]interface{}{
						"type":             "number",
						"description":      "Stop once more than this fraction of the arrows matched. Defaults to the configured ratio",
						"exclusiveMinimum": 0,
						"maximum":          1,
					},
				},
				"required": []string{"annotation"},
			},
		},
		{
			Name:        "inhibit_geometry",
			Description: "Compute the inhibit marker for an arrow rectangle and head box: shaft, anchor, tick and the annotated box.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rect": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"minItems":    5,
						"maxItems":    5,
						"description": "Arrow rectangle as [cx, cy, width, height, angle_degrees]",
					},
					"head": map[string]interface{}{
						"type":        "array",
						"items":       pointSchema,
						"description": "Head box vertices: two opposite corners or a polygon of at least four points",
					},
				},
				"required": []string{"rect", "head"},
			},
		},
	}
}
