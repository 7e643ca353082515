// config_test.go - Unit Tests fuer die Environment-Konfiguration
package envconfig

import (
	"log/slog"
	"os"
	"testing"
)

// setenv setzt eine Variable und stellt den alten Wert wieder her
func setenv(t *testing.T, key, value string) {
	t.Helper()
	original, had := os.LookupEnv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, original)
		} else {
			os.Unsetenv(key)
		}
	})
	os.Setenv(key, value)
}

// TestVar testet das Trimmen von Quotes und Leerzeichen
func TestVar(t *testing.T) {
	tests := []struct {
		name, value, expected string
	}{
		{"Einfacher Wert", "wert", "wert"},
		{"Leerzeichen", "  wert  ", "wert"},
		{"Doppelte Quotes", `"wert"`, "wert"},
		{"Einfache Quotes", "'wert'", "wert"},
		{"Quotes und Leerzeichen", `  "wert"  `, "wert"},
		{"Leer", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setenv(t, "TRAINSET_TESTVAR", tt.value)
			if got := Var("TRAINSET_TESTVAR"); got != tt.expected {
				t.Errorf("Var() = %q, erwartet %q", got, tt.expected)
			}
		})
	}
}

// TestLogLevel testet die Log-Level-Abbildung von TRAINSET_DEBUG
func TestLogLevel(t *testing.T) {
	tests := []struct {
		value    string
		expected slog.Level
	}{
		{"", slog.LevelInfo},
		{"0", slog.LevelInfo},
		{"false", slog.LevelInfo},
		{"1", slog.LevelDebug},
		{"true", slog.LevelDebug},
		{"2", slog.Level(-8)},
	}
	for _, tt := range tests {
		name := tt.value
		if name == "" {
			name = "leer"
		}
		t.Run(name, func(t *testing.T) {
			setenv(t, "TRAINSET_DEBUG", tt.value)
			if got := LogLevel(); got != tt.expected {
				t.Errorf("LogLevel() = %v, erwartet %v", got, tt.expected)
			}
		})
	}
}

// TestCacheDir testet die Cache-Verzeichnis-Aufloesung
func TestCacheDir(t *testing.T) {
	setenv(t, "TRAINSET_CACHE", "/custom/scan-cache")
	if got := CacheDir(); got != "/custom/scan-cache" {
		t.Errorf("CacheDir() = %q, erwartet /custom/scan-cache", got)
	}

	setenv(t, "TRAINSET_CACHE", "")
	got := CacheDir()
	if got == "" {
		t.Fatal("CacheDir() sollte nie leer sein")
	}
}

// TestBool testet den Bool-Getter inklusive unparsebarer Werte
func TestBool(t *testing.T) {
	get := Bool("TRAINSET_TESTBOOL")

	tests := []struct {
		value    string
		expected bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
		// Gesetzt aber unparsebar zaehlt als aktiviert
		{"on", true},
	}
	for _, tt := range tests {
		name := tt.value
		if name == "" {
			name = "leer"
		}
		t.Run(name, func(t *testing.T) {
			setenv(t, "TRAINSET_TESTBOOL", tt.value)
			if got := get(); got != tt.expected {
				t.Errorf("Bool() = %v, erwartet %v", got, tt.expected)
			}
		})
	}
}

// TestUint testet den Uint-Getter mit Default-Wert
func TestUint(t *testing.T) {
	get := Uint("TRAINSET_TESTUINT", 8)

	setenv(t, "TRAINSET_TESTUINT", "")
	if got := get(); got != 8 {
		t.Errorf("Uint() = %d, erwartet Default 8", got)
	}
	setenv(t, "TRAINSET_TESTUINT", "16")
	if got := get(); got != 16 {
		t.Errorf("Uint() = %d, erwartet 16", got)
	}
	setenv(t, "TRAINSET_TESTUINT", "-1")
	if got := get(); got != 8 {
		t.Errorf("Uint() = %d, erwartet Default 8 fuer negative Werte", got)
	}
	setenv(t, "TRAINSET_TESTUINT", "abc")
	if got := get(); got != 8 {
		t.Errorf("Uint() = %d, erwartet Default 8 fuer unparsebare Werte", got)
	}
}

// TestInt64 testet den Int64-Getter, insbesondere negative Seeds
func TestInt64(t *testing.T) {
	get := Int64("TRAINSET_TESTSEED", -1)

	setenv(t, "TRAINSET_TESTSEED", "")
	if got := get(); got != -1 {
		t.Errorf("Int64() = %d, erwartet Default -1", got)
	}
	setenv(t, "TRAINSET_TESTSEED", "42")
	if got := get(); got != 42 {
		t.Errorf("Int64() = %d, erwartet 42", got)
	}
	setenv(t, "TRAINSET_TESTSEED", "-7")
	if got := get(); got != -7 {
		t.Errorf("Int64() = %d, erwartet -7", got)
	}
}

// TestAsMap testet dass alle TRAINSET-Variablen dokumentiert sind
func TestAsMap(t *testing.T) {
	m := AsMap()
	required := []string{
		"TRAINSET_DEBUG",
		"TRAINSET_CACHE",
		"TRAINSET_NOCACHE",
		"TRAINSET_NOHISTORY",
		"TRAINSET_SEED",
		"TRAINSET_WORKERS",
		"HF_HOME",
		"HF_TOKEN",
	}
	for _, key := range required {
		entry, ok := m[key]
		if !ok {
			t.Errorf("AsMap() ohne Eintrag fuer %s", key)
			continue
		}
		if entry.Name != key {
			t.Errorf("Eintrag %s hat Name %q", key, entry.Name)
		}
		if entry.Description == "" {
			t.Errorf("Eintrag %s ohne Beschreibung", key)
		}
	}

	// Der Token-Wert selbst darf nicht exportiert werden
	setenv(t, "HF_TOKEN", "hf_geheim")
	if v, ok := AsMap()["HF_TOKEN"].Value.(bool); !ok || !v {
		t.Errorf("HF_TOKEN Value = %v, erwartet true als bool", AsMap()["HF_TOKEN"].Value)
	}
}

// TestValues testet die String-Export-Map
func TestValues(t *testing.T) {
	vals := Values()
	if len(vals) == 0 {
		t.Fatal("Values() sollte nicht leer sein")
	}
	for k := range vals {
		if k == "" {
			t.Error("Leerer Schluessel in Values()")
		}
	}
	if _, ok := vals["TRAINSET_DEBUG"]; !ok {
		t.Error("Values() ohne TRAINSET_DEBUG")
	}
}
