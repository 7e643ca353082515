package readline

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/emirpasic/gods/v2/lists/arraylist"
)

// testBuffer erstellt einen Puffer mit fester Breite ohne Terminal
func testBuffer(t *testing.T, prompt string, width int) *Buffer {
	t.Helper()
	return &Buffer{
		Buf:       arraylist.New[rune](),
		Prompt:    &Prompt{Prompt: prompt},
		Width:     width,
		LineWidth: width - len(prompt),
		out:       io.Discard,
	}
}

func fill(b *Buffer, s string) {
	for _, r := range s {
		b.Add(r)
	}
}

func TestBufferEditieren(t *testing.T) {
	b := testBuffer(t, "> ", 80)
	fill(b, "red hair")

	if got := b.String(); got != "red hair" {
		t.Fatalf("String() = %q, erwartet %q", got, "red hair")
	}
	if b.Pos != 8 {
		t.Fatalf("Pos = %d, erwartet 8", b.Pos)
	}

	b.MoveToStart()
	if b.Pos != 0 {
		t.Errorf("Pos nach MoveToStart = %d, erwartet 0", b.Pos)
	}
	b.MoveToEnd()
	if b.Pos != 8 {
		t.Errorf("Pos nach MoveToEnd = %d, erwartet 8", b.Pos)
	}

	b.MoveLeft()
	b.MoveLeft()
	b.Add('X')
	if got := b.String(); got != "red haXir" {
		t.Errorf("String() nach Einfuegen = %q, erwartet %q", got, "red haXir")
	}

	b.Remove()
	if got := b.String(); got != "red hair" {
		t.Errorf("String() nach Remove = %q, erwartet %q", got, "red hair")
	}

	b.Delete()
	if got := b.String(); got != "red har" {
		t.Errorf("String() nach Delete = %q, erwartet %q", got, "red har")
	}

	b.DeleteRemaining()
	if got := b.String(); got != "red ha" {
		t.Errorf("String() nach DeleteRemaining = %q, erwartet %q", got, "red ha")
	}

	b.DeleteBefore()
	if !b.IsEmpty() {
		t.Errorf("String() nach DeleteBefore = %q, erwartet leeren Puffer", b.String())
	}
}

func TestBufferWortOperationen(t *testing.T) {
	b := testBuffer(t, "> ", 80)
	fill(b, "blue eyes long hair")

	b.MoveLeftWord()
	if b.Pos != 15 {
		t.Errorf("Pos nach MoveLeftWord = %d, erwartet 15", b.Pos)
	}
	b.MoveLeftWord()
	if b.Pos != 10 {
		t.Errorf("Pos nach zweitem MoveLeftWord = %d, erwartet 10", b.Pos)
	}

	b.MoveRightWord()
	if b.Pos != 14 {
		t.Errorf("Pos nach MoveRightWord = %d, erwartet 14", b.Pos)
	}

	b.MoveToEnd()
	b.DeleteWord()
	if got := b.String(); got != "blue eyes long " {
		t.Errorf("String() nach DeleteWord = %q, erwartet %q", got, "blue eyes long ")
	}
	b.DeleteWord()
	if got := b.String(); got != "blue eyes " {
		t.Errorf("String() nach zweitem DeleteWord = %q, erwartet %q", got, "blue eyes ")
	}
}

func TestBufferDeleteWordLeerzeichen(t *testing.T) {
	b := testBuffer(t, "> ", 80)
	fill(b, "white dress  ")

	b.DeleteWord()
	if got := b.String(); got != "white " {
		t.Errorf("String() = %q, erwartet %q", got, "white ")
	}
}

func TestBufferReplace(t *testing.T) {
	b := testBuffer(t, "> ", 80)
	fill(b, "altes zeug")

	b.Replace([]rune("1girl, solo"))
	if got := b.String(); got != "1girl, solo" {
		t.Errorf("String() = %q, erwartet %q", got, "1girl, solo")
	}
	if b.Pos != 11 {
		t.Errorf("Pos = %d, erwartet 11", b.Pos)
	}

	b.Replace(nil)
	if !b.IsEmpty() {
		t.Errorf("String() = %q, erwartet leeren Puffer", b.String())
	}
}

func TestBufferSichtfenster(t *testing.T) {
	b := testBuffer(t, "> ", 80)
	fill(b, strings.Repeat("a", 200))

	// Cursor am Ende: das Fenster muss mitgewandert sein
	if b.off == 0 {
		t.Fatal("Sichtfenster wurde nicht verschoben")
	}
	if got := b.widthBetween(b.off, b.Pos); got > b.LineWidth-1 {
		t.Errorf("Cursor-Spalte %d liegt ausserhalb des Fensters (LineWidth %d)", got, b.LineWidth)
	}

	b.MoveToStart()
	if b.off != 0 {
		t.Errorf("off nach MoveToStart = %d, erwartet 0", b.off)
	}
	if got := b.visible(); len(got) != b.LineWidth {
		t.Errorf("sichtbare Breite = %d, erwartet %d", len(got), b.LineWidth)
	}
}

func TestBufferSichtfensterBreiteZeichen(t *testing.T) {
	b := testBuffer(t, "> ", 12)
	fill(b, "日本語のタグ")

	if b.off != 2 {
		t.Errorf("off = %d, erwartet 2", b.off)
	}
	if got := b.visible(); got != "語のタグ" {
		t.Errorf("visible() = %q, erwartet %q", got, "語のタグ")
	}
	if got := b.DisplaySize(); got != 12 {
		t.Errorf("DisplaySize() = %d, erwartet 12", got)
	}
}

func TestBufferRedrawAusgabe(t *testing.T) {
	var out bytes.Buffer
	b := testBuffer(t, "> ", 80)
	b.out = &out

	b.Add('a')

	got := out.String()
	for _, want := range []string{CursorHide, "> a", CursorShow} {
		if !strings.Contains(got, want) {
			t.Errorf("Ausgabe %q enthaelt %q nicht", got, want)
		}
	}
}
