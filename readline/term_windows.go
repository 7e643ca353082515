//go:build windows

package readline

import (
	"golang.org/x/sys/windows"
)

// State sichert den Konsolen-Modus vor dem Raw-Mode
type State struct {
	mode uint32
}

// SetRawMode schaltet die Konsole auf zeichenweise Eingabe um
func SetRawMode(fd uintptr) (*State, error) {
	handle := windows.Handle(fd)

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return nil, err
	}

	raw := mode &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_LINE_INPUT | windows.ENABLE_PROCESSED_INPUT)
	raw |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT

	if err := windows.SetConsoleMode(handle, raw); err != nil {
		return nil, err
	}

	return &State{mode: mode}, nil
}

// UnsetRawMode stellt den gesicherten Konsolen-Modus wieder her
func UnsetRawMode(fd uintptr, state any) error {
	s := state.(*State)
	return windows.SetConsoleMode(windows.Handle(fd), s.mode)
}

// IsTerminal prueft ob der Deskriptor eine Konsole ist
func IsTerminal(fd uintptr) bool {
	var mode uint32
	return windows.GetConsoleMode(windows.Handle(fd), &mode) == nil
}

// handleCharCtrlZ ist unter Windows ein No-Op, Suspend gibt es nicht
func handleCharCtrlZ(fd uintptr, state any) (string, error) {
	return "", nil
}
