// Package ui provides terminal UI components for wtr command output.
//
// This package is organized into subpackages by functionality:
//
// # Subpackages
//
//   - [static]: Non-interactive output (tables, formatted text)
//   - [prompt]: Simple interactive prompts (confirm, text input, select)
//   - [styles]: Shared lipgloss styles for visual consistency
//
// # Static Output
//
// Use [static.RenderTable] to render aligned tables:
//
//	import "github.com/riverhollow/wtr/internal/ui/static"
//
//	headers := []string{"NAME", "VALUE"}
//	rows := [][]string{{"foo", "bar"}, {"baz", "qux"}}
//	output := static.RenderTable(headers, rows)
//
// # Simple Prompts
//
// Use [prompt] package for simple interactive prompts:
//
//	import "github.com/riverhollow/wtr/internal/ui/prompt"
//
//	result, err := prompt.Confirm("Continue?")
//	result, err := prompt.TextInput("Name:", "placeholder")
//	result, err := prompt.Select("Choose:", options)
//
// # Design Notes
//
// Output is designed for terminal display with:
//   - Monospace font assumptions
//   - ANSI color support
//   - Clear separation between static and interactive components
package ui
