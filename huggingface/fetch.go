// fetch.go - Laden der Konfigurations-Dateien eines Modells
// Laedt nur die kleinen JSON-Configs fuer die Erkennung, keine
// Gewichte. Unterstuetzt Muster, Revisionen und parallele Downloads.
// Autor: Agent 1 - Phase 9
package huggingface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetch-Konstanten
const (
	MaxFetchRetries         = 3
	FetchRetryDelay         = 2 * time.Second
	DefaultFetchParallelism = 4
)

// DefaultFetchPatterns sind die fuer die Erkennung relevanten Dateien.
var DefaultFetchPatterns = []string{
	"model_index.json",
	"config.json",
	"*/config.json",
}

// FetchResult enthaelt das Ergebnis eines Config-Fetches
type FetchResult struct {
	ModelID      string
	Revision     string
	SnapshotPath string
	Files        []FetchedFile
	TotalSize    int64
	FetchTime    time.Duration
}

// FetchedFile repraesentiert eine geladene Datei
type FetchedFile struct {
	Filename  string
	LocalPath string
	Size      int64
	FromCache bool
}

// FetchOption konfiguriert einen Fetch
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	revision    string
	patterns    []string
	parallelism int
	progressFn  func(done, total int)
}

// WithFetchRevision setzt die Git-Revision
func WithFetchRevision(revision string) FetchOption {
	return func(cfg *fetchConfig) { cfg.revision = revision }
}

// WithFetchPatterns ersetzt die Standard-Dateimuster
func WithFetchPatterns(patterns ...string) FetchOption {
	return func(cfg *fetchConfig) { cfg.patterns = patterns }
}

// WithFetchParallelism setzt die Anzahl paralleler Downloads
func WithFetchParallelism(n int) FetchOption {
	return func(cfg *fetchConfig) {
		if n > 0 {
			cfg.parallelism = n
		}
	}
}

// WithFetchProgress setzt den Fortschritts-Callback (geladene Dateien)
func WithFetchProgress(fn func(done, total int)) FetchOption {
	return func(cfg *fetchConfig) { cfg.progressFn = fn }
}

// FetchConfigs laedt die Konfigurations-Dateien eines Modells in den
// Cache. Der Snapshot liegt unter dem Commit-Hash der Revision und
// refs/<revision> zeigt darauf, wie es huggingface_hub anlegt.
func (c *Client) FetchConfigs(ctx context.Context, modelID string, opts ...FetchOption) (*FetchResult, error) {
	start := time.Now()
	cfg := &fetchConfig{
		revision:    DefaultRevision,
		patterns:    DefaultFetchPatterns,
		parallelism: DefaultFetchParallelism,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	info, err := c.GetModelInfo(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("model-info abrufen fehlgeschlagen: %w", err)
	}

	files := filterFetchFiles(info.Siblings, cfg.patterns)
	if len(files) == 0 {
		return nil, &HuggingFaceError{Op: "fetch", ModelID: modelID, Err: errors.New("keine passenden dateien im repository")}
	}

	// Snapshot unter dem Commit-Hash, Revision als Fallback
	commit := info.SHA
	if commit == "" {
		commit = cfg.revision
	}
	modelDir := filepath.Join(GetCacheDir(), modelIDToCacheDir(modelID))
	snapshotDir := filepath.Join(modelDir, CacheSnapshotDir, commit)

	var mu sync.Mutex
	var done int
	results := make([]FetchedFile, 0, len(files))
	record := func(f FetchedFile) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, f)
		done++
		if cfg.progressFn != nil {
			cfg.progressFn(done, len(files))
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for _, file := range files {
		g.Go(func() error {
			localPath := filepath.Join(snapshotDir, file.Filename)
			if stat, err := os.Stat(localPath); err == nil && (file.Size == 0 || stat.Size() == file.Size) {
				record(FetchedFile{Filename: file.Filename, LocalPath: localPath, Size: stat.Size(), FromCache: true})
				return nil
			}
			path, err := c.fetchFile(ctx, modelID, file.Filename, commit, snapshotDir)
			if err != nil {
				return fmt.Errorf("download von %s fehlgeschlagen: %w", file.Filename, err)
			}
			size := file.Size
			if stat, err := os.Stat(path); err == nil {
				size = stat.Size()
			}
			record(FetchedFile{Filename: file.Filename, LocalPath: path, Size: size})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// refs auf den geladenen Snapshot setzen
	refPath := filepath.Join(modelDir, CacheRefDir, cfg.revision)
	if err := os.MkdirAll(filepath.Dir(refPath), 0755); err == nil {
		os.WriteFile(refPath, []byte(commit), 0644)
	}

	result := &FetchResult{
		ModelID:      modelID,
		Revision:     cfg.revision,
		SnapshotPath: snapshotDir,
		Files:        results,
		FetchTime:    time.Since(start),
	}
	for _, f := range results {
		result.TotalSize += f.Size
	}
	return result, nil
}

// fetchFile laedt eine Datei mit Wiederholungen. Endgueltige Fehler
// wie 404 werden nicht wiederholt.
func (c *Client) fetchFile(ctx context.Context, modelID, filename, revision, targetDir string) (string, error) {
	var lastErr error
	attempts := 0
	for attempts < MaxFetchRetries {
		if attempts > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(FetchRetryDelay):
			}
		}
		attempts++
		path, err := c.DownloadFile(ctx, modelID, filename, revision, targetDir)
		if err == nil {
			return path, nil
		}
		lastErr = err
		if errors.Is(err, ErrModelNotFound) || errors.Is(err, ErrUnauthorized) {
			break
		}
	}
	return "", fmt.Errorf("nach %d versuchen: %w", attempts, lastErr)
}

// filterFetchFiles filtert Repository-Dateien nach Glob-Mustern.
func filterFetchFiles(siblings []APISibling, patterns []string) []APISibling {
	var result []APISibling
	for _, s := range siblings {
		for _, pattern := range patterns {
			if m, _ := filepath.Match(pattern, s.Filename); m {
				result = append(result, s)
				break
			}
		}
	}
	return result
}
