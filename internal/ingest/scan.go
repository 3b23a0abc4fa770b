// Package ingest discovers card images on the local filesystem.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

// FileResult is one matched file. DuplicateOf names the first file with the same
// content; duplicates are reported but not meant to be processed again.
type FileResult struct {
	Path        string
	Ext         string
	Size        int64
	HashHex     string
	DuplicateOf string
	Err         string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Unique       uint32
	Deduplicated uint32
	Failed       uint32
}

type ScanOptions struct {
	Extensions []string // lowercased sans '.'; empty -> constants.AllowedExtensions
	SkipHidden bool
	Logger     *slog.Logger
}

// ScanDirectory walks root, keeps files with an accepted extension and hashes each
// one with SHA-256 so repeated uploads of the same card are flagged. Results keep
// walk order (lexical). Unreadable entries are recorded and the walk continues.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := extSet(opts.Extensions)

	var results []FileResult
	var stats DirStats
	firstByHash := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++

		sum, size, err := HashFile(path)
		if err != nil {
			logger.Warn("ingest.scan.hash_error", "path", path, "error", err)
			results = append(results, FileResult{Path: path, Ext: ext, Err: err.Error()})
			stats.Failed++
			return nil
		}
		r := FileResult{Path: path, Ext: ext, Size: size, HashHex: sum}
		if first, dup := firstByHash[sum]; dup {
			r.DuplicateOf = first
			stats.Deduplicated++
		} else {
			firstByHash[sum] = path
			stats.Unique++
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("ingest.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"unique", stats.Unique,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// HashFile returns the hex SHA-256 of the file at path and its size.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func extSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return constants.AllowedExtensions
	}
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			out[e] = struct{}{}
		}
	}
	return out
}
