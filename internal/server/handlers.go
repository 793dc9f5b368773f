package server

import (
	"context"
	"fmt"
	"image"

	jsoniter "github.com/json-iterator/go"

	"github.com/ironsheep/notehead-scan/internal/calibration"
	"github.com/ironsheep/notehead-scan/internal/config"
	"github.com/ironsheep/notehead-scan/internal/imaging"
	"github.com/ironsheep/notehead-scan/internal/layout"
	"github.com/ironsheep/notehead-scan/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "heads_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	// Page Inspection
	case "page_info":
		return s.handlePageInfo(args)
	case "layout_check":
		return s.handleLayoutCheck(args)
	case "page_zoom":
		return s.handlePageZoom(args)

	// Head Detection
	case "heads_detect":
		return s.handleHeadsDetect(ctx, args)
	case "heads_calibration":
		return s.handleHeadsCalibration(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments; missing arguments decode as an empty object.
func unmarshalArgs(args jsoniter.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = jsoniter.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}

// === Page Inspection Handlers ===

type pageInfoArgs struct {
	Path      string `json:"path"`
	Threshold uint8  `json:"threshold"`
}

// PageInfo describes a loaded page.
type PageInfo struct {
	Path      string  `json:"path"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	InkPixels int     `json:"ink_pixels"`
	InkRatio  float64 `json:"ink_ratio"`
}

func (s *Server) handlePageInfo(args jsoniter.RawMessage) (interface{}, error) {
	var a pageInfoArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	page, err := imaging.LoadPage(s.cache, a.Path, a.Threshold)
	if err != nil {
		return nil, err
	}
	bin := page.Binary
	ink := bin.ForeCount(bin.Bounds())
	info := &PageInfo{Path: a.Path, Width: bin.Width(), Height: bin.Height(), InkPixels: ink}
	if total := bin.Width() * bin.Height(); total > 0 {
		info.InkRatio = float64(ink) / float64(total)
	}
	return info, nil
}

type pageZoomArgs struct {
	Path      string   `json:"path"`
	Box       [4]int   `json:"box"`
	Margin    *int     `json:"margin"`
	Scale     *float64 `json:"scale"`
	Binary    bool     `json:"binary"`
	Threshold uint8    `json:"threshold"`
}

func (s *Server) handlePageZoom(args jsoniter.RawMessage) (interface{}, error) {
	var a pageZoomArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	margin, scale := 8, 4.0
	if a.Margin != nil {
		margin = *a.Margin
	}
	if a.Scale != nil {
		scale = *a.Scale
	}
	var img image.Image
	if a.Binary {
		page, err := imaging.LoadPage(s.cache, a.Path, a.Threshold)
		if err != nil {
			return nil, err
		}
		img = page.Binary.ToImage()
	} else {
		var err error
		if img, err = s.cache.Load(a.Path); err != nil {
			return nil, err
		}
	}
	return imaging.CropAround(img, image.Rect(a.Box[0], a.Box[1], a.Box[2], a.Box[3]), margin, scale)
}

type layoutCheckArgs struct {
	Path string `json:"path"`
}

// LayoutSummary counts the content of a valid layout document.
type LayoutSummary struct {
	Path      string `json:"path"`
	Interline int    `json:"interline"`
	Systems   int    `json:"systems"`
	Staves    int    `json:"staves"`
	Ledgers   int    `json:"ledgers"`
	Seeds     int    `json:"seeds"`
	Bars      int    `json:"bars"`
	Beams     int    `json:"beams"`
}

func (s *Server) handleLayoutCheck(args jsoniter.RawMessage) (interface{}, error) {
	var a layoutCheckArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	doc, err := layout.Load(a.Path)
	if err != nil {
		return nil, err
	}
	sum := &LayoutSummary{Path: a.Path, Interline: doc.Interline, Systems: len(doc.Systems)}
	for _, sys := range doc.Systems {
		sum.Staves += len(sys.Staves)
		sum.Seeds += len(sys.Seeds)
		sum.Bars += len(sys.Bars)
		sum.Beams += len(sys.Beams)
		for _, st := range sys.Staves {
			sum.Ledgers += len(st.Ledgers)
		}
	}
	return sum, nil
}

// === Head Detection Handlers ===

type headsDetectArgs struct {
	ImagePath       string `json:"image_path"`
	LayoutPath      string `json:"layout_path"`
	ConfigPath      string `json:"config_path"`
	CalibrationPath string `json:"calibration_path"`
	SaveCalibration bool   `json:"save_calibration"`
	Overlay         bool   `json:"overlay"`
}

func (s *Server) handleHeadsDetect(ctx context.Context, args jsoniter.RawMessage) (interface{}, error) {
	var a headsDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" || a.LayoutPath == "" {
		return nil, fmt.Errorf("image_path and layout_path are required")
	}
	if a.SaveCalibration && a.CalibrationPath == "" {
		return nil, fmt.Errorf("save_calibration requires calibration_path")
	}

	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts := pipeline.Options{
		Config:   cfg,
		Catalogs: s.catalogs,
		Overlay:  a.Overlay,
		Logger:   s.log,
	}
	if a.CalibrationPath != "" {
		if opts.Calibration, err = calibration.LoadFile(a.CalibrationPath); err != nil {
			return nil, err
		}
	}

	res, err := pipeline.RunFiles(ctx, s.cache, a.ImagePath, a.LayoutPath, opts)
	if err != nil {
		return nil, err
	}
	if a.SaveCalibration {
		if err := res.Sheet.Calibration.SaveFile(a.CalibrationPath); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type headsCalibrationArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleHeadsCalibration(args jsoniter.RawMessage) (interface{}, error) {
	var a headsCalibrationArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	offsets, err := calibration.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"path":         a.Path,
		"seed_offsets": offsets.Records(),
	}, nil
}
