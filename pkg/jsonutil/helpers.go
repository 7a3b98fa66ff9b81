// Package jsonutil provides JSON formatting helpers for Yatter.
//
// These are used for CLI output and for keeping server error bodies
// short enough to log and display.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// PrettyJSON formats a JSON string with indentation for display.
// Returns the original string if it's not valid JSON.
func PrettyJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

// CompactJSON minifies a JSON string by removing whitespace.
// Returns the original string if it's not valid JSON.
func CompactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

// WriteIndented encodes v as indented JSON followed by a newline.
func WriteIndented(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// TruncateString truncates a string to maxLen runes, adding "..."
// if truncation occurred.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
