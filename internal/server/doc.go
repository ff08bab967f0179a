// Package server implements the MCP (Model Context Protocol) server for the
// inhibit simulator.
//
// This package provides a JSON-RPC 2.0 server that exposes the simulation
// pipeline as MCP tools, so that a client can convert diagrams or inspect
// arrow matches interactively.
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
// Simulation:
//   - inhibit_simulate_file: Convert one annotated diagram
//   - inhibit_simulate_batch: Convert a directory of annotations
//
// Inspection:
//   - inhibit_match_arrows: Report arrow matches without writing files
//   - inhibit_geometry: Compute an inhibit marker from an arrow rectangle
//
// # Image Caching
//
// Diagrams are decoded through a shared cache, so batch workers handling
// annotations of the same diagram at the same time decode it once. Every
// tool evicts a diagram as soon as the file that loaded it is done, whether
// it was simulated, skipped or failed, so no image outlives its request.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An image where no arrow matched is not an error: inhibit_simulate_file
// reports it as skipped.
package server
