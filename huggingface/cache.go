// cache.go - Cache-Management fuer HuggingFace Modelle
// Kompatibel mit Python huggingface_hub Cache-Struktur.
// Autor: Agent 1 - Phase 9
package huggingface

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Cache-Konstanten
const (
	DefaultCacheSubdir = "huggingface/hub"
	CacheRefDir        = "refs"
	CacheBlobDir       = "blobs"
	CacheSnapshotDir   = "snapshots"
	CacheModelPrefix   = "models--"
	DefaultRevision    = "main"
)

// Cache-Fehler
var (
	ErrCacheNotFound   = errors.New("cache-verzeichnis nicht gefunden")
	ErrModelNotInCache = errors.New("modell nicht im cache")
	ErrCacheCorrupted  = errors.New("cache-struktur beschaedigt")
)

// CachedModel repraesentiert ein gecachtes Modell
type CachedModel struct {
	ModelID   string
	CacheDir  string
	Revisions []string
	TotalSize int64
	FileCount int
}

// CacheInfo enthaelt Informationen ueber den gesamten Cache
type CacheInfo struct {
	CacheDir   string
	TotalSize  int64
	ModelCount int
	Models     []CachedModel
}

// GetCacheDir gibt das Cache-Verzeichnis zurueck
func GetCacheDir() string {
	if cacheDir := os.Getenv("HF_HUB_CACHE"); cacheDir != "" {
		return cacheDir
	}
	if hfHome := os.Getenv(EnvHFHome); hfHome != "" {
		return filepath.Join(hfHome, "hub")
	}
	return getDefaultCacheDir()
}

func getDefaultCacheDir() string {
	var baseDir string
	switch runtime.GOOS {
	case "windows":
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			baseDir = filepath.Join(userProfile, ".cache")
		} else {
			baseDir = filepath.Join(os.TempDir(), "huggingface_cache")
		}
	default:
		if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
			baseDir = xdgCache
		} else if home, err := os.UserHomeDir(); err == nil {
			baseDir = filepath.Join(home, ".cache")
		} else {
			baseDir = filepath.Join(os.TempDir(), "huggingface_cache")
		}
	}
	return filepath.Join(baseDir, DefaultCacheSubdir)
}

// SnapshotPath loest die Revision eines gecachten Modells in den
// Snapshot-Pfad auf. refs/<revision> enthaelt den Commit-Hash des
// zugehoerigen Snapshots; Revisionen, die direkt als Verzeichnis
// vorliegen, werden unveraendert genutzt.
func SnapshotPath(modelID, revision string) (string, error) {
	if revision == "" {
		revision = DefaultRevision
	}
	modelDir := filepath.Join(GetCacheDir(), modelIDToCacheDir(modelID))
	if stat, err := os.Stat(modelDir); err != nil || !stat.IsDir() {
		return "", &HuggingFaceError{Op: "resolve", ModelID: modelID, Err: ErrModelNotInCache}
	}

	target := revision
	if ref, err := os.ReadFile(filepath.Join(modelDir, CacheRefDir, revision)); err == nil {
		if commit := strings.TrimSpace(string(ref)); commit != "" {
			target = commit
		}
	}

	snapshot := filepath.Join(modelDir, CacheSnapshotDir, target)
	stat, err := os.Stat(snapshot)
	if err != nil {
		if target != revision {
			// refs zeigt auf einen fehlenden Snapshot
			return "", &HuggingFaceError{Op: "resolve", ModelID: modelID, Err: fmt.Errorf("%w: refs/%s -> %s", ErrCacheCorrupted, revision, target)}
		}
		return "", &HuggingFaceError{Op: "resolve", ModelID: modelID, Err: fmt.Errorf("%w: revision %q", ErrModelNotInCache, revision)}
	}
	if !stat.IsDir() {
		return "", &HuggingFaceError{Op: "resolve", ModelID: modelID, Err: fmt.Errorf("%w: %s ist kein verzeichnis", ErrCacheCorrupted, snapshot)}
	}
	return snapshot, nil
}

// Resolve nimmt einen lokalen Pfad oder eine Model-ID und gibt den
// lokalen Pfad zurueck. Existierende Pfade haben Vorrang, alles andere
// wird als Model-ID im Cache gesucht.
func Resolve(pathOrID string) (string, error) {
	if _, err := os.Stat(pathOrID); err == nil {
		return pathOrID, nil
	}
	if err := validateModelID(pathOrID); err != nil {
		return "", err
	}
	return SnapshotPath(pathOrID, DefaultRevision)
}

// GetCachedFile gibt den Pfad zu einer Datei im aufgeloesten Snapshot
// zurueck
func GetCachedFile(modelID, filename, revision string) (string, bool) {
	snapshot, err := SnapshotPath(modelID, revision)
	if err != nil {
		return "", false
	}
	filePath := filepath.Join(snapshot, filename)
	if _, err := os.Stat(filePath); err == nil {
		return filePath, true
	}
	return "", false
}

// GetCacheInfo gibt detaillierte Informationen ueber den Cache zurueck
func GetCacheInfo() (*CacheInfo, error) {
	cacheDir := GetCacheDir()
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		return &CacheInfo{CacheDir: cacheDir}, nil
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache lesen fehlgeschlagen: %w", err)
	}
	info := &CacheInfo{CacheDir: cacheDir, Models: make([]CachedModel, 0)}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), CacheModelPrefix) {
			continue
		}
		modelPath := filepath.Join(cacheDir, entry.Name())
		cachedModel := CachedModel{ModelID: cacheDirToModelID(entry.Name()), CacheDir: modelPath}
		snapshotPath := filepath.Join(modelPath, CacheSnapshotDir)
		if revisions, err := os.ReadDir(snapshotPath); err == nil {
			for _, rev := range revisions {
				if rev.IsDir() {
					cachedModel.Revisions = append(cachedModel.Revisions, rev.Name())
				}
			}
		}
		cachedModel.TotalSize, cachedModel.FileCount = getDirSizeAndCount(modelPath)
		info.Models = append(info.Models, cachedModel)
		info.TotalSize += cachedModel.TotalSize
		info.ModelCount++
	}
	return info, nil
}

// ListCachedModels gibt eine Liste aller gecachten Modelle zurueck
func ListCachedModels() ([]string, error) {
	cacheDir := GetCacheDir()
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		return []string{}, nil
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("cache lesen fehlgeschlagen: %w", err)
	}
	var models []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), CacheModelPrefix) {
			models = append(models, cacheDirToModelID(entry.Name()))
		}
	}
	return models, nil
}

func modelIDToCacheDir(modelID string) string {
	return CacheModelPrefix + strings.ReplaceAll(modelID, "/", "--")
}

func cacheDirToModelID(cacheDir string) string {
	return strings.Replace(strings.TrimPrefix(cacheDir, CacheModelPrefix), "--", "/", 1)
}

func getDirSizeAndCount(path string) (int64, int) {
	var size int64
	var count int
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count
}
