// types.go - Tastencodes und ANSI-Steuersequenzen
//
// Dieses Modul enthaelt:
// - Char*: Steuerzeichen im Raw-Mode (Ctrl-Kombinationen)
// - Key*/Meta*: Codes innerhalb von CSI-Sequenzen (Pfeiltasten etc.)
// - Cursor*/Clear*/Color*: ANSI-Sequenzen fuer die Ausgabe

package readline

import "fmt"

const (
	CharNull      = 0
	CharLineStart = 1
	CharBackward  = 2
	CharInterrupt = 3
	CharDelete    = 4
	CharLineEnd   = 5
	CharForward   = 6
	CharBell      = 7
	CharCtrlH     = 8
	CharTab       = 9
	CharCtrlJ     = 10
	CharKill      = 11
	CharCtrlL     = 12
	CharEnter     = 13
	CharNext      = 14
	CharPrev      = 16
	CharBckSearch = 18
	CharFwdSearch = 19
	CharTranspose = 20
	CharCtrlU     = 21
	CharCtrlW     = 23
	CharCtrlZ     = 26
	CharEsc       = 27
	CharSpace     = 32
	CharEscapeEx  = 91
	CharBackspace = 127
)

const (
	// Codes nach ESC [ - bei KeyDel folgt noch ein '~'
	CharBracketedPaste = 50
	KeyDel             = 51
	KeyUp              = 65
	KeyDown            = 66
	KeyRight           = 67
	KeyLeft            = 68
	MetaEnd            = 70
	MetaStart          = 72
)

const (
	CharBracketedPasteStart = "00~"
	CharBracketedPasteEnd   = "01~"
)

const (
	CursorUp    = "\033[1A"
	CursorDown  = "\033[1B"
	CursorRight = "\033[1C"
	CursorLeft  = "\033[1D"

	CursorBOL  = "\033[1G"
	CursorHide = "\033[?25l"
	CursorShow = "\033[?25h"

	ClearToEOL  = "\033[K"
	ClearLine   = "\033[2K"
	ClearScreen = "\033[2J"
	CursorReset = "\033[0;0f"

	ColorGrey    = "\033[38;5;245m"
	ColorDefault = "\033[0m"

	StartBracketedPaste = "\033[?2004h"
	EndBracketedPaste   = "\033[?2004l"
)

// CursorUpN bewegt den Cursor n Zeilen nach oben.
// n <= 0 liefert die leere Sequenz, da viele Terminals den
// Parameter 0 wie 1 behandeln.
func CursorUpN(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dA", n)
}

// CursorDownN bewegt den Cursor n Zeilen nach unten
func CursorDownN(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dB", n)
}

// CursorRightN bewegt den Cursor n Spalten nach rechts
func CursorRightN(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dC", n)
}

// CursorLeftN bewegt den Cursor n Spalten nach links
func CursorLeftN(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("\033[%dD", n)
}
