// cache.go - Scan-Cache für Bild-Metadaten
// Enthält: Cache struct, OpenCache, Get/Put, Schema-Initialisierung
//
// Der Cache vermeidet erneutes Lesen und Hashen unveränderter Bilder
// zwischen Scan-Läufen. Ein Eintrag gilt als gültig, solange Pfad,
// Dateigröße und Änderungszeit übereinstimmen. Der Inhalt ist jederzeit
// reproduzierbar; bei einem Schema-Wechsel wird er verworfen.

package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite-Treiber registrieren
)

// cacheSchemaVersion wird bei Schema-Änderungen erhöht; ältere Caches
// werden geleert statt migriert.
const cacheSchemaVersion = 1

// Cache umhüllt die SQLite-Verbindung des Scan-Caches.
// SQLite serialisiert Schreiber selbst; WAL erlaubt parallele Leser.
type Cache struct {
	conn *sql.DB
}

// CacheEntry ist ein gespeicherter Bild-Metadatensatz.
type CacheEntry struct {
	Path    string
	Size    int64
	ModTime int64 // Unix-Nanosekunden
	Width   int
	Height  int
	Format  string
	Digest  string // sha256 der Bilddatei
}

// OpenCache öffnet oder erstellt den Scan-Cache unter path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}

	c := &Cache{conn: conn}
	if err := c.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize cache: %w", err)
	}
	return c, nil
}

// Close schließt die Datenbankverbindung.
func (c *Cache) Close() error {
	_, _ = c.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	return c.conn.Close()
}

// init legt das Schema an und leert veraltete Cache-Stände.
func (c *Cache) init() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS images (
		path      TEXT PRIMARY KEY,
		size      INTEGER NOT NULL,
		mtime     INTEGER NOT NULL,
		width     INTEGER NOT NULL,
		height    INTEGER NOT NULL,
		format    TEXT NOT NULL DEFAULT '',
		digest    TEXT NOT NULL DEFAULT '',
		cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS meta (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL
	);

	-- Versions-Zeile einfügen falls nicht vorhanden
	INSERT OR IGNORE INTO meta (id, schema_version) VALUES (1, %d);
	`, cacheSchemaVersion)

	if _, err := c.conn.Exec(schema); err != nil {
		return err
	}

	var version int
	if err := c.conn.QueryRow("SELECT schema_version FROM meta WHERE id = 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != cacheSchemaVersion {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("clear outdated cache: %w", err)
		}
		if _, err := c.conn.Exec("UPDATE meta SET schema_version = ? WHERE id = 1", cacheSchemaVersion); err != nil {
			return fmt.Errorf("update schema version: %w", err)
		}
	}
	return nil
}

// Get liefert den Eintrag zu path, wenn Größe und Änderungszeit noch
// stimmen.
func (c *Cache) Get(path string, size, modTime int64) (CacheEntry, bool) {
	e := CacheEntry{Path: path, Size: size, ModTime: modTime}
	err := c.conn.QueryRow(
		"SELECT width, height, format, digest FROM images WHERE path = ? AND size = ? AND mtime = ?",
		path, size, modTime,
	).Scan(&e.Width, &e.Height, &e.Format, &e.Digest)
	if err != nil {
		return CacheEntry{}, false
	}
	return e, true
}

// Put speichert oder ersetzt einen Eintrag.
func (c *Cache) Put(e CacheEntry) error {
	_, err := c.conn.Exec(`
		INSERT OR REPLACE INTO images (path, size, mtime, width, height, format, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.Size, e.ModTime, e.Width, e.Height, e.Format, e.Digest,
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// Len zählt die gespeicherten Einträge.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.conn.QueryRow("SELECT COUNT(*) FROM images").Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}

// Clear verwirft alle Einträge.
func (c *Cache) Clear() error {
	_, err := c.conn.Exec("DELETE FROM images")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
