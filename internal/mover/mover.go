package mover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/store"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/log"
	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/scheduler"
)

// Status classifies the result of one relocation attempt.
type Status int

const (
	// Moved means the file was relocated and the index rewritten.
	Moved Status = iota
	// MoveFailed means the relocation itself failed; the file and its
	// index row are untouched.
	MoveFailed
	// TargetExists means a same-named file already occupies the target;
	// the file is skipped rather than overwritten.
	TargetExists
	// IndexStale means the file was relocated but the index holds no
	// row for it. The move is not rolled back; re-indexing the target
	// directory restores strict consistency.
	IndexStale
	// RewriteFailed means the file was relocated but rewriting its
	// index row failed, so the store may still reference the old path
	// until the target directory is re-indexed.
	RewriteFailed
)

func (s Status) String() string {
	switch s {
	case Moved:
		return "moved"
	case MoveFailed:
		return "move-failed"
	case TargetExists:
		return "target-exists"
	case IndexStale:
		return "index-stale"
	case RewriteFailed:
		return "rewrite-failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-file result of a move run.
type Outcome struct {
	Source string
	Target string
	Status Status
	Err    error
}

// Mover relocates files into a target directory and keeps the index
// store pointing at the new locations. It never leaves the store
// referencing a path that no longer exists: the index row is rewritten
// only after the filesystem move succeeded, and a failed move leaves
// the old row valid.
type Mover struct {
	store store.IndexStore
	sched scheduler.Config
	log   log.LoggerService
}

func New(st store.IndexStore, sched scheduler.Config, logger log.LoggerService) *Mover {
	return &Mover{
		store: st,
		sched: sched,
		log:   logger,
	}
}

// MoveAll relocates every path into targetDir. An uncreatable target
// directory aborts the run; everything else is a per-file outcome.
func (m *Mover) MoveAll(ctx context.Context, paths []string, targetDir string) ([]Outcome, error) {
	targetDir, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target directory %q: %w", targetDir, err)
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory %q: %w", targetDir, err)
	}

	results := scheduler.Run(ctx, paths, m.sched, func(ctx context.Context, path string) (Outcome, error) {
		outcome := m.moveOne(ctx, path, targetDir)
		return outcome, outcome.Err
	})

	outcomes := make([]Outcome, len(results))
	for i, result := range results {
		outcomes[i] = result.Payload
		switch outcomes[i].Status {
		case Moved:
			m.log.Debug("Moved %s -> %s", outcomes[i].Source, outcomes[i].Target)
		case IndexStale:
			m.log.Warn("Moved %s -> %s but no index row to rewrite", outcomes[i].Source, outcomes[i].Target)
		case RewriteFailed:
			m.log.Error("Moved %s -> %s but the index still references the old path: %v; re-index the target directory", outcomes[i].Source, outcomes[i].Target, outcomes[i].Err)
		default:
			m.log.Warn("Skipped %s: %v", outcomes[i].Source, outcomes[i].Err)
		}
	}
	return outcomes, nil
}

func (m *Mover) moveOne(ctx context.Context, source, targetDir string) Outcome {
	target := filepath.Join(targetDir, filepath.Base(source))
	outcome := Outcome{Source: source, Target: target}

	info, err := os.Stat(source)
	if err != nil {
		outcome.Status = MoveFailed
		outcome.Err = fmt.Errorf("source unavailable: %w", err)
		return outcome
	}

	// Claim the target with O_EXCL so two workers moving same-named
	// files cannot both pass an existence check and silently replace
	// each other. The rename below only ever overwrites our own claim.
	claim, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			outcome.Status = TargetExists
			outcome.Err = fmt.Errorf("target already exists: %s", target)
			return outcome
		}
		outcome.Status = MoveFailed
		outcome.Err = fmt.Errorf("failed to claim target: %w", err)
		return outcome
	}
	claim.Close()

	// Rename first, copy+delete-on-verify for cross-volume moves
	if err := os.Rename(source, target); err != nil {
		if err := copyAndRemove(source, target); err != nil {
			os.Remove(target) // release the claim
			outcome.Status = MoveFailed
			outcome.Err = err
			return outcome
		}
	}

	// The file has already moved, so the rewrite runs detached from
	// run aborts and task deadlines. Losing it would leave the store
	// referencing a path that no longer exists.
	if err := m.store.RewritePath(context.WithoutCancel(ctx), source, target); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			outcome.Status = IndexStale
			return outcome
		}
		outcome.Status = RewriteFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = Moved
	return outcome
}

// copyAndRemove copies source to target, verifies the copy is complete,
// and only then deletes the source. A failed or short copy removes the
// partial target and keeps the source in place.
func copyAndRemove(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	// The caller holds the O_EXCL claim on target, so truncating here
	// only ever clobbers that claim.
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create target: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written != info.Size() {
		err = fmt.Errorf("short copy: %d of %d bytes", written, info.Size())
	}
	if err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to copy across volumes: %w", err)
	}

	return os.Remove(source)
}
