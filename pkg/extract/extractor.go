package extract

import (
	"context"
	"errors"
)

// Standard extraction errors that Extractor implementations should use.
var (
	// ErrToolUnavailable is returned when the extraction tool cannot run
	// at all. Fatal, aborts the whole run.
	ErrToolUnavailable = errors.New("extract: extraction tool unavailable")

	// ErrUnreadableFile is returned when the tool runs but cannot read
	// metadata from one file. Non-fatal, the file is skipped.
	ErrUnreadableFile = errors.New("extract: unreadable file")
)

// Extractor turns one file path into its metadata key/value mapping.
// Implementations must not hold locks across Extract, which can block
// on subprocess or disk I/O for an arbitrary time.
type Extractor interface {
	// Check verifies the extractor is able to run at all.
	Check() error

	// Extract returns the metadata of the file at path.
	Extract(ctx context.Context, path string) (map[string]string, error)
}
