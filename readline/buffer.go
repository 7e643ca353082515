// buffer.go - Textpuffer fuer die einzeilige Eingabe
//
// Dieses Modul verwaltet den Runen-Puffer samt Cursor. Captions sind
// eine logische Zeile; laeuft der Text ueber die Terminalbreite
// hinaus, verschiebt sich ein Sichtfenster horizontal mit dem Cursor.
// Nach jeder Aenderung wird die Zeile komplett neu gezeichnet.

package readline

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emirpasic/gods/v2/lists/arraylist"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type Buffer struct {
	// Pos ist der Runen-Index des Cursors
	Pos    int
	Buf    *arraylist.List[rune]
	Prompt *Prompt

	Width     int
	LineWidth int

	// off ist der erste sichtbare Runen-Index des Sichtfensters
	off int
	out io.Writer
}

func NewBuffer(prompt *Prompt) (*Buffer, error) {
	fd := int(os.Stdout.Fd())
	width := 80
	if termWidth, _, err := term.GetSize(fd); err == nil {
		width = termWidth
	}

	lwidth := width - len(prompt.prompt())
	if lwidth < 10 {
		lwidth = 10
	}

	b := &Buffer{
		Buf:       arraylist.New[rune](),
		Prompt:    prompt,
		Width:     width,
		LineWidth: lwidth,
		out:       os.Stdout,
	}

	return b, nil
}

// widthBetween liefert die Anzeigebreite der Runen [from, to)
func (b *Buffer) widthBetween(from, to int) int {
	sum := 0
	for i := from; i < to; i++ {
		if r, ok := b.Buf.Get(i); ok {
			sum += runewidth.RuneWidth(r)
		}
	}
	return sum
}

// DisplaySize liefert die Anzeigebreite des gesamten Inhalts
func (b *Buffer) DisplaySize() int {
	return b.widthBetween(0, b.Buf.Size())
}

func (b *Buffer) IsEmpty() bool {
	return b.Buf.Empty()
}

func (b *Buffer) String() string {
	var sb strings.Builder
	for i := range b.Buf.Size() {
		r, _ := b.Buf.Get(i)
		sb.WriteRune(r)
	}
	return sb.String()
}

// scrollToCursor verschiebt das Sichtfenster, bis der Cursor
// hineinfaellt. Rechts bleibt eine Spalte frei, damit der Cursor
// hinter dem letzten Zeichen stehen kann.
func (b *Buffer) scrollToCursor() {
	if b.off > b.Pos {
		b.off = b.Pos
	}
	for b.off < b.Pos && b.widthBetween(b.off, b.Pos) > b.LineWidth-1 {
		b.off++
	}
}

// visible liefert den Ausschnitt, der in das Sichtfenster passt
func (b *Buffer) visible() string {
	var sb strings.Builder
	width := 0
	for i := b.off; i < b.Buf.Size(); i++ {
		r, _ := b.Buf.Get(i)
		rw := runewidth.RuneWidth(r)
		if width+rw > b.LineWidth {
			break
		}
		width += rw
		sb.WriteRune(r)
	}
	return sb.String()
}

// redraw zeichnet Prompt und Sichtfenster neu und setzt den Cursor
func (b *Buffer) redraw() {
	b.scrollToCursor()
	col := len(b.Prompt.prompt()) + b.widthBetween(b.off, b.Pos)
	fmt.Fprint(b.out, CursorHide+CursorBOL+ClearToEOL)
	fmt.Fprint(b.out, b.Prompt.prompt()+b.visible())
	fmt.Fprint(b.out, CursorBOL+CursorRightN(col)+CursorShow)
}

func (b *Buffer) Add(r rune) {
	if b.Pos == b.Buf.Size() {
		b.Buf.Add(r)
	} else {
		b.Buf.Insert(b.Pos, r)
	}
	b.Pos += 1
	b.redraw()
}

// Remove loescht das Zeichen vor dem Cursor (Backspace)
func (b *Buffer) Remove() {
	if b.Pos > 0 {
		b.Pos -= 1
		b.Buf.Remove(b.Pos)
		b.redraw()
	}
}

// Delete loescht das Zeichen unter dem Cursor
func (b *Buffer) Delete() {
	if b.Pos < b.Buf.Size() {
		b.Buf.Remove(b.Pos)
		b.redraw()
	}
}

func (b *Buffer) MoveLeft() {
	if b.Pos > 0 {
		b.Pos -= 1
		b.redraw()
	}
}

func (b *Buffer) MoveRight() {
	if b.Pos < b.Buf.Size() {
		b.Pos += 1
		b.redraw()
	}
}

// MoveLeftWord springt an den Anfang des Worts vor dem Cursor
func (b *Buffer) MoveLeftWord() {
	if b.Pos == 0 {
		return
	}

	var foundNonspace bool
	for b.Pos > 0 {
		v, _ := b.Buf.Get(b.Pos - 1)
		if v == ' ' {
			if foundNonspace {
				break
			}
		} else {
			foundNonspace = true
		}
		b.Pos -= 1
	}
	b.redraw()
}

// MoveRightWord springt auf das Leerzeichen hinter dem aktuellen Wort
func (b *Buffer) MoveRightWord() {
	if b.Pos == b.Buf.Size() {
		return
	}

	for b.Pos < b.Buf.Size() {
		b.Pos += 1
		if v, _ := b.Buf.Get(b.Pos); v == ' ' {
			break
		}
	}
	b.redraw()
}

func (b *Buffer) MoveToStart() {
	if b.Pos > 0 {
		b.Pos = 0
		b.redraw()
	}
}

func (b *Buffer) MoveToEnd() {
	if b.Pos < b.Buf.Size() {
		b.Pos = b.Buf.Size()
		b.redraw()
	}
}

// DeleteBefore loescht alles vor dem Cursor (Ctrl-U)
func (b *Buffer) DeleteBefore() {
	if b.Pos > 0 {
		for b.Pos > 0 {
			b.Pos -= 1
			b.Buf.Remove(b.Pos)
		}
		b.redraw()
	}
}

// DeleteRemaining loescht alles ab dem Cursor (Ctrl-K)
func (b *Buffer) DeleteRemaining() {
	if b.Pos < b.Buf.Size() {
		for b.Pos < b.Buf.Size() {
			b.Buf.Remove(b.Buf.Size() - 1)
		}
		b.redraw()
	}
}

// DeleteWord loescht das Wort vor dem Cursor samt angrenzender
// Leerzeichen (Ctrl-W, Alt-Backspace)
func (b *Buffer) DeleteWord() {
	if b.Buf.Size() == 0 || b.Pos == 0 {
		return
	}

	var foundNonspace bool
	for b.Pos > 0 {
		v, _ := b.Buf.Get(b.Pos - 1)
		if v == ' ' && foundNonspace {
			break
		}
		if v != ' ' {
			foundNonspace = true
		}
		b.Pos -= 1
		b.Buf.Remove(b.Pos)
	}
	b.redraw()
}

// Replace ersetzt den gesamten Inhalt, der Cursor steht am Ende
func (b *Buffer) Replace(r []rune) {
	b.Buf.Clear()
	b.Pos = 0
	b.off = 0
	for _, c := range r {
		b.Buf.Add(c)
	}
	b.Pos = b.Buf.Size()
	b.redraw()
}

// ClearScreen leert den Bildschirm und zeichnet die Zeile oben neu
func (b *Buffer) ClearScreen() {
	fmt.Fprint(b.out, ClearScreen+CursorReset)
	b.redraw()
}
