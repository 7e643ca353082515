//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

// term.go - Raw-Mode-Verwaltung ueber termios
//
// Dieses Modul enthaelt:
// - Termios: Plattform-Termios-Struktur
// - SetRawMode/UnsetRawMode: Umschalten des Terminal-Modus
// - IsTerminal: Prueft ob ein Deskriptor ein Terminal ist

package readline

import (
	"syscall"
)

type Termios syscall.Termios

// SetRawMode schaltet das Terminal in den Raw-Mode und liefert den
// vorherigen Zustand zur spaeteren Wiederherstellung
func SetRawMode(fd uintptr) (*Termios, error) {
	termios, err := getTermios(fd)
	if err != nil {
		return nil, err
	}

	newTermios := *termios
	newTermios.Iflag &^= syscall.IGNBRK | syscall.BRKINT | syscall.PARMRK | syscall.ISTRIP | syscall.INLCR | syscall.IGNCR | syscall.ICRNL | syscall.IXON
	newTermios.Lflag &^= syscall.ECHO | syscall.ECHONL | syscall.ICANON | syscall.ISIG | syscall.IEXTEN
	newTermios.Cflag &^= syscall.CSIZE | syscall.PARENB
	newTermios.Cflag |= syscall.CS8
	newTermios.Cc[syscall.VMIN] = 1
	newTermios.Cc[syscall.VTIME] = 0

	return termios, setTermios(fd, &newTermios)
}

// UnsetRawMode stellt den gesicherten Terminal-Zustand wieder her
func UnsetRawMode(fd uintptr, termios any) error {
	t := termios.(*Termios)
	return setTermios(fd, t)
}

// IsTerminal prueft ob der Deskriptor ein Terminal ist
func IsTerminal(fd uintptr) bool {
	_, err := getTermios(fd)
	return err == nil
}

// handleCharCtrlZ stellt das Terminal zurueck und stoppt den Prozess.
// Nach dem Fortsetzen kehrt der Aufrufer in die Eingabeschleife zurueck.
func handleCharCtrlZ(fd uintptr, termios any) (string, error) {
	t := termios.(*Termios)
	if err := UnsetRawMode(fd, t); err != nil {
		return "", err
	}

	//nolint:errcheck
	syscall.Kill(0, syscall.SIGSTOP)

	// Ab hier laeuft der Prozess wieder
	return "", nil
}
