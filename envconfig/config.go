// config.go - Haupt-Konfigurationsfunktionen fuer Trainset
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (TRAINSET_DEBUG)
// - CacheDir: Gibt Cache-Verzeichnis zurueck (TRAINSET_CACHE)
// - Typisierte Getter fuer die uebrigen TRAINSET_* Variablen
//
// Weitere Funktionen sind ausgelagert:
// - config_utils.go: Getter-Helfer und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via TRAINSET_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TRAINSET_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// CacheDir gibt das Verzeichnis fuer den Scan-Cache zurueck
// Konfigurierbar via TRAINSET_CACHE
// Default: $XDG_CACHE_HOME/trainset bzw. $HOME/.cache/trainset
func CacheDir() string {
	if s := Var("TRAINSET_CACHE"); s != "" {
		return s
	}

	base, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		base = filepath.Join(home, ".cache")
	}

	return filepath.Join(base, "trainset")
}

var (
	// NoHistory deaktiviert Readline-History
	NoHistory = Bool("TRAINSET_NOHISTORY")

	// NoCache deaktiviert Lesen und Schreiben des Scan-Caches
	NoCache = Bool("TRAINSET_NOCACHE")

	// Workers setzt die Anzahl paralleler Worker beim Scannen
	// 0 = Anzahl der CPUs
	Workers = Uint("TRAINSET_WORKERS", 0)

	// Seed setzt den Seed fuer Caption-Shuffle in der Vorschau
	// Negative Werte = zeitbasiert
	Seed = Int64("TRAINSET_SEED", -1)
)

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
