// scan.go - Paralleles Einlesen der Datensatz-Verzeichnisse
//
// Liest Bildabmessungen, Sidecar-Captions und Digests aller Subsets,
// ordnet die Bilder ihren Buckets zu und zaehlt Tag-Haeufigkeiten.
// Die Verzeichnisse werden nebenlaeufig verarbeitet; das Ergebnis ist
// unabhaengig von der Worker-Zahl deterministisch sortiert.
package dataset

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/trainset/trainset/caption"
	"github.com/trainset/trainset/imagefile"
)

// ImageEntry ist ein gescanntes Trainingsbild mit Caption und Bucket.
type ImageEntry struct {
	Path        string
	CaptionPath string // leer, wenn keine Sidecar-Datei existiert
	Caption     string
	Width       int
	Height      int
	Format      string
	Size        int64
	Digest      string // sha256, leer ohne Digest-Berechnung
	Bucket      [2]int
	Resized     [2]int // Zielgroesse vor dem Zuschnitt
	SubsetIndex int
	NumRepeats  int
}

// DatasetScan ist das Scan-Ergebnis eines Datensatzes.
type DatasetScan struct {
	Dataset         ResolvedDataset
	Entries         []ImageEntry
	Buckets         [][2]int
	BucketCounts    map[[2]int]int
	TagFrequency    *caption.TagFrequency
	MissingCaptions int
}

// ImageCount gibt die Zahl der Bilder ohne Wiederholungen zurueck.
func (d *DatasetScan) ImageCount() int {
	return len(d.Entries)
}

// RepeatedCount gewichtet jedes Bild mit seinen Wiederholungen.
func (d *DatasetScan) RepeatedCount() int {
	n := 0
	for _, e := range d.Entries {
		n += e.NumRepeats
	}
	return n
}

// Scanner liest Datensaetze ein. Der Nullwert ist benutzbar: ohne Cache,
// ohne Digests, mit GOMAXPROCS-1 Workern.
type Scanner struct {
	Workers    int    // 0 = GOMAXPROCS-1
	Cache      *Cache // optional
	WithDigest bool   // sha256 pro Bild berechnen
	Progress   func(done, total int)
}

// Scan verarbeitet alle Datensaetze einer aufgeloesten Konfiguration.
func (s *Scanner) Scan(ctx context.Context, datasets []ResolvedDataset) ([]DatasetScan, error) {
	out := make([]DatasetScan, 0, len(datasets))
	for _, d := range datasets {
		scan, err := s.scanDataset(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, scan)
	}
	return out, nil
}

type scanJob struct {
	subset int
	path   string
}

func (s *Scanner) scanDataset(ctx context.Context, d ResolvedDataset) (DatasetScan, error) {
	scan := DatasetScan{
		Dataset:      d,
		BucketCounts: make(map[[2]int]int),
		TagFrequency: caption.NewTagFrequency(),
	}

	var jobs []scanJob
	for i, subset := range d.Subsets {
		paths, err := ListImages(subset.ImageDir)
		if err != nil {
			return DatasetScan{}, err
		}
		if len(paths) == 0 {
			slog.Warn("keine Bilder im Subset", "dir", subset.ImageDir)
		}
		for _, p := range paths {
			jobs = append(jobs, scanJob{subset: i, path: p})
		}
	}

	var (
		mu      sync.Mutex
		done    int
		entries = make([]ImageEntry, 0, len(jobs))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers(), 1))
	for _, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := s.scanImage(d.Subsets[job.subset], job.path)
			if err != nil {
				return err
			}
			entry.SubsetIndex = job.subset

			mu.Lock()
			defer mu.Unlock()
			entries = append(entries, entry)
			done++
			if s.Progress != nil {
				s.Progress(done, len(jobs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DatasetScan{}, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	// Buckets sequentiell zuordnen, damit dynamische Buckets in
	// stabiler Reihenfolge entstehen.
	var bm *BucketManager
	if d.EnableBucket {
		bm = NewBucketManager(d.Resolution, d.MinBucketReso, d.MaxBucketReso, d.BucketResoSteps, d.BucketNoUpscale)
	}
	for i := range entries {
		e := &entries[i]
		if bm != nil {
			e.Bucket, e.Resized = bm.Select(e.Width, e.Height)
		} else {
			e.Bucket, e.Resized = d.Resolution, d.Resolution
		}
		scan.BucketCounts[e.Bucket]++

		subset := d.Subsets[e.SubsetIndex]
		if e.CaptionPath == "" {
			scan.MissingCaptions++
		}
		if e.Caption != "" {
			scan.TagFrequency.Add(subset.Name, e.Caption, subset.Caption.Separator)
		}
	}
	if bm != nil {
		scan.Buckets = bm.Resos()
	} else {
		scan.Buckets = [][2]int{d.Resolution}
	}
	scan.Entries = entries

	if scan.MissingCaptions > 0 {
		slog.Warn("Bilder ohne Caption-Datei", "count", scan.MissingCaptions)
	}
	return scan, nil
}

// scanImage liest Metadaten eines Bildes, moeglichst aus dem Cache.
func (s *Scanner) scanImage(subset ResolvedSubset, path string) (ImageEntry, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return ImageEntry{}, err
	}

	entry := ImageEntry{
		Path:       path,
		Size:       fi.Size(),
		NumRepeats: subset.NumRepeats,
	}

	cached, ok := s.cacheGet(path, fi.Size(), fi.ModTime().UnixNano())
	if ok && (!s.WithDigest || cached.Digest != "") {
		entry.Width, entry.Height = cached.Width, cached.Height
		entry.Format, entry.Digest = cached.Format, cached.Digest
	} else {
		info, err := imagefile.ProbeFile(path)
		if err != nil {
			return ImageEntry{}, err
		}
		entry.Width, entry.Height = info.Width, info.Height
		entry.Format = info.Format.String()
		if s.WithDigest {
			digest, err := digestFile(path)
			if err != nil {
				return ImageEntry{}, err
			}
			entry.Digest = digest
		}
		s.cachePut(CacheEntry{
			Path: path, Size: fi.Size(), ModTime: fi.ModTime().UnixNano(),
			Width: entry.Width, Height: entry.Height,
			Format: entry.Format, Digest: entry.Digest,
		})
	}

	entry.Caption, entry.CaptionPath, err = ReadCaption(subset, path)
	if err != nil {
		return ImageEntry{}, err
	}
	return entry, nil
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0) - 1
}

func (s *Scanner) cacheGet(path string, size, modTime int64) (CacheEntry, bool) {
	if s.Cache == nil {
		return CacheEntry{}, false
	}
	return s.Cache.Get(path, size, modTime)
}

func (s *Scanner) cachePut(e CacheEntry) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Put(e); err != nil {
		slog.Debug("cache put fehlgeschlagen", "path", e.Path, "error", err)
	}
}

// ListImages sammelt die Bilddateien eines Verzeichnisses, nicht
// rekursiv, sortiert nach Namen.
func ListImages(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("subset lesen: %w", err)
	}
	var paths []string
	for _, e := range dirEntries {
		if e.IsDir() || !imagefile.IsImagePath(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// ReadCaption liest die Sidecar-Caption zu einem Bild. Ohne Datei
// greifen die class_tokens des Subsets; der zurueckgegebene Pfad ist
// dann leer.
func ReadCaption(subset ResolvedSubset, imagePath string) (string, string, error) {
	stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	captionPath := stem + subset.CaptionExtension

	f, err := os.Open(captionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return subset.ClassTokens, "", nil
		}
		return "", "", fmt.Errorf("caption lesen: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM tolerieren
	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, tr))
	if err != nil {
		return "", "", fmt.Errorf("caption lesen %s: %w", captionPath, err)
	}

	text := strings.TrimRight(string(data), "\r\n \t")
	if subset.CleanCaption {
		text = caption.Clean(text)
	}
	return text, captionPath, nil
}

// digestFile berechnet den sha256 einer Datei.
func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}
