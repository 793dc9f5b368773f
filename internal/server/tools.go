package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Page Inspection
		{
			Name:        "page_info",
			Description: "Load a page image and return its dimensions and the share of ink pixels after binarization.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Gray level separating ink from paper (1-255). Default 140",
						"default":     140,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "layout_check",
			Description: "Validate a page layout document (systems, staves, ledgers, stem seeds, bars, beams) and summarize its content.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YAML layout document",
					},
				},
				"required": []string{"path"},
			},
		},

		{
			Name:        "page_zoom",
			Description: "Crop the neighbourhood of a page box, such as a detected head, and enlarge it with sharp pixels. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
					"box": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"minItems":    4,
						"maxItems":    4,
						"description": "Area of interest as [x0, y0, x1, y1], max exclusive",
					},
					"margin": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels kept around the box. Default 8",
						"default":     8,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Enlargement factor. Default 4.0",
						"default":     4.0,
					},
					"binary": map[string]interface{}{
						"type":        "boolean",
						"description": "Show the thresholded page the detector works on instead of the scan. Default false",
						"default":     false,
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Gray level separating ink from paper when binary is set (1-255). Default 140",
						"default":     140,
					},
				},
				"required": []string{"path", "box"},
			},
		},

		// Head Detection
		{
			Name:        "heads_detect",
			Description: "Detect the note heads of a page. Returns every accepted head with its shape, staff, pitch position, box and grade, plus diagnostic counters and a fingerprint of the result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the page image",
					},
					"layout_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YAML layout document of the page",
					},
					"config_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional YAML configuration overriding the built-in parameters",
					},
					"calibration_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional YAML file of seed offsets to start from",
					},
					"save_calibration": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the updated seed offsets back to calibration_path. Default false",
						"default":     false,
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the page with detected heads outlined, as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"image_path", "layout_path"},
			},
		},
		{
			Name:        "heads_calibration",
			Description: "Read a seed-offset calibration file and list its offsets per head shape and stem side.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YAML calibration file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
