// input.go - Verarbeitung der Tastatureingaben
//
// Dieses Modul enthaelt:
// - processEscapeEx: CSI-Sequenzen (Pfeiltasten, Entf, Pos1/Ende)
// - processEscape: Alt-Kombinationen (Wort-Spruenge, Wort loeschen)
// - processCharacter: Steuerzeichen und druckbare Zeichen

package readline

import (
	"fmt"
	"io"
	"os"
)

// processEscapeEx verarbeitet erweiterte Escape-Sequenzen.
// Gibt true zurueck wenn weiter iteriert werden soll.
func (i *Instance) processEscapeEx(r rune, buf *Buffer, currentLineBuf *[]rune, escex *bool, metaDel *bool) (bool, error) {
	*escex = false

	switch r {
	case KeyUp:
		i.historyPrev(buf, currentLineBuf)
	case KeyDown:
		i.historyNext(buf, currentLineBuf)
	case KeyLeft:
		buf.MoveLeft()
	case KeyRight:
		buf.MoveRight()
	case CharBracketedPaste:
		var code string
		for range 3 {
			r, err := i.Terminal.Read()
			if err != nil {
				return false, io.EOF
			}
			code += string(r)
		}
		if code == CharBracketedPasteStart {
			i.Pasting = true
		} else if code == CharBracketedPasteEnd {
			i.Pasting = false
		}
	case KeyDel:
		if buf.DisplaySize() > 0 {
			buf.Delete()
		}
		*metaDel = true
	case MetaStart:
		buf.MoveToStart()
	case MetaEnd:
		buf.MoveToEnd()
	default:
		// Unbekannte Sequenzen ueberspringen
	}
	return true, nil
}

// processEscape verarbeitet einfache Escape-Sequenzen (Alt+Buchstabe).
// Gibt true zurueck wenn weiter iteriert werden soll.
func (i *Instance) processEscape(r rune, buf *Buffer, esc *bool, escex *bool) bool {
	*esc = false

	switch r {
	case 'b':
		buf.MoveLeftWord()
	case 'f':
		buf.MoveRightWord()
	case CharBackspace:
		buf.DeleteWord()
	case CharEscapeEx:
		*escex = true
	}
	return true
}

// processCharacter verarbeitet normale Zeichen und Steuersequenzen.
// Gibt (output, fertig, error) zurueck.
func (i *Instance) processCharacter(r rune, buf *Buffer, currentLineBuf *[]rune, esc *bool, metaDel *bool) (string, bool, error) {
	switch r {
	case CharNull:
		return "", false, nil
	case CharEsc:
		*esc = true
	case CharInterrupt:
		i.Pasting = false
		return "", true, ErrInterrupt
	case CharPrev:
		i.historyPrev(buf, currentLineBuf)
	case CharNext:
		i.historyNext(buf, currentLineBuf)
	case CharLineStart:
		buf.MoveToStart()
	case CharLineEnd:
		buf.MoveToEnd()
	case CharBackward:
		buf.MoveLeft()
	case CharForward:
		buf.MoveRight()
	case CharBackspace, CharCtrlH:
		buf.Remove()
	case CharTab:
		// In einer Tag-Zeile ist Tab ein Trennzeichen
		buf.Add(' ')
	case CharDelete:
		if buf.DisplaySize() > 0 {
			buf.Delete()
		} else {
			return "", true, io.EOF
		}
	case CharKill:
		buf.DeleteRemaining()
	case CharCtrlU:
		buf.DeleteBefore()
	case CharCtrlL:
		buf.ClearScreen()
	case CharCtrlW:
		buf.DeleteWord()
	case CharCtrlZ:
		fd := os.Stdin.Fd()
		output, err := handleCharCtrlZ(fd, i.Terminal.termios)
		return output, true, err
	case CharCtrlJ, CharEnter:
		// Zeilenumbrueche aus einer Paste-Sequenz werden zu
		// Leerzeichen, die Caption bleibt eine Zeile
		if i.Pasting {
			buf.Add(' ')
			return "", false, nil
		}
		return i.handleEnter(buf), true, nil
	default:
		if *metaDel {
			*metaDel = false
			return "", false, nil
		}
		if r >= CharSpace {
			buf.Add(r)
		}
	}
	return "", false, nil
}

// handleEnter schliesst die Eingabe ab und pflegt die History
func (i *Instance) handleEnter(buf *Buffer) string {
	output := buf.String()
	if output != "" {
		i.History.Add(output)
	}
	buf.MoveToEnd()
	fmt.Println()
	return output
}
