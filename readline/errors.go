package readline

import "errors"

// ErrInterrupt signalisiert Ctrl-C waehrend der Eingabe
var ErrInterrupt = errors.New("Interrupt")
