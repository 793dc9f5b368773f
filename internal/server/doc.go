// Package server implements the MCP (Model Context Protocol) server for note
// head detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the head detection
// pipeline through the MCP protocol, so MCP-compatible clients can run
// detection on scanned music pages and inspect the results.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Page Inspection:
//   - page_info: Dimensions and ink share of a page image
//   - layout_check: Validate and summarize a layout document
//   - page_zoom: Enlarged crop around a page box
//
// Head Detection:
//   - heads_detect: Run detection on a page, optionally with a persisted
//     calibration and an annotated overlay
//   - heads_calibration: List the seed offsets of a calibration file
//
// # Image Caching
//
// Pages are cached by path and reused across tool calls. Template catalogs are
// cached by font family and point size. Both caches live as long as the
// server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server stopped", "err", err)
//	}
package server
