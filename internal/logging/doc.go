// Package logging configures log/slog for checkenv.
//
// By default diagnostics are warnings and errors on stderr, so the report
// on stdout stays exactly as printed by the checker. --debug lowers the
// level to debug and --log-file adds a JSON log file with size-based
// rotation. The MCP server logs to a file only.
package logging
