package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ExifTool invokes the external exiftool binary once per file and
// parses its JSON output into a flat key/value mapping.
type ExifTool struct {
	command string
	timeout time.Duration
}

// NewExifTool creates an extractor backed by the given exiftool command.
// A timeout of 0 disables the per-call deadline.
func NewExifTool(command string, timeout time.Duration) *ExifTool {
	if command == "" {
		command = "exiftool"
	}
	return &ExifTool{
		command: command,
		timeout: timeout,
	}
}

// Check verifies the exiftool binary exists and responds to -ver.
func (e *ExifTool) Check() error {
	if _, err := exec.LookPath(e.command); err != nil {
		return fmt.Errorf("%w: %q not found in PATH", ErrToolUnavailable, e.command)
	}
	if err := exec.Command(e.command, "-ver").Run(); err != nil {
		return fmt.Errorf("%w: %q failed version check: %v", ErrToolUnavailable, e.command, err)
	}
	return nil
}

func (e *ExifTool) Extract(ctx context.Context, path string) (map[string]string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.command, "-j", "-charset", "exiftool=utf8", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, ctx.Err())
		}
		if _, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnreadableFile, path, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: failed to run %q: %v", ErrToolUnavailable, e.command, err)
	}

	metadata, err := parseExifToolOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
	}
	return metadata, nil
}

// parseExifToolOutput converts exiftool -j output (a JSON array with
// one object per input file) into a string mapping. Values that are
// not strings are rendered the way exiftool prints them in text mode.
func parseExifToolOutput(output []byte) (map[string]string, error) {
	var objects []map[string]any
	if err := json.Unmarshal(output, &objects); err != nil {
		return nil, fmt.Errorf("malformed exiftool output: %v", err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("empty exiftool output")
	}

	metadata := make(map[string]string, len(objects[0]))
	for key, value := range objects[0] {
		// SourceFile duplicates the record identity
		if key == "SourceFile" {
			continue
		}
		metadata[key] = formatValue(value)
	}
	return metadata, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item)
		}
		return strings.Join(parts, ", ")
	default:
		raw, _ := json.Marshal(v)
		return string(raw)
	}
}
