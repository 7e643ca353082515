// interactive.go - Interaktiver Modus fuer die Caption-Verarbeitung
// Verarbeitet Eingaben zeilenweise und bietet /set, /show, /seed, /bye
package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/caption"
	"github.com/trainset/trainset/dataset"
	"github.com/trainset/trainset/envconfig"
	"github.com/trainset/trainset/readline"
)

// captionSession haelt den Zustand des interaktiven Modus.
type captionSession struct {
	params caption.Params
	rng    *rand.Rand
	pos    caption.Position
}

// CaptionsInteractiveHandler - Startet den interaktiven Caption-Modus
func CaptionsInteractiveHandler(cmd *cobra.Command, args []string) error {
	seed := envconfig.Seed()
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetInt64("seed")
	}

	sess := &captionSession{
		rng: newSampleRNG(seed),
		pos: caption.Position{Epoch: 1},
	}

	if len(args) == 1 {
		cfg, err := dataset.Load(args[0])
		if err != nil {
			return err
		}

		resolved, err := cfg.Resolve()
		if err != nil {
			return err
		}

		ss := resolved[0].Subsets[0]
		sess.params = ss.Caption
		fmt.Printf("Using caption settings of subset '%s'\n", ss.ImageDir)
	}

	return captionsInteractive(sess)
}

// captionsInteractive fuehrt die Eingabeschleife aus
func captionsInteractive(sess *captionSession) error {
	scanner, err := readline.New(readline.Prompt{
		Prompt:      "> ",
		Placeholder: "Enter a caption to process (/? for help)",
	})
	if err != nil {
		return err
	}

	if envconfig.NoHistory() {
		scanner.HistoryDisable()
	}

	fmt.Print(readline.StartBracketedPaste)
	defer fmt.Printf(readline.EndBracketedPaste)

	for {
		line, err := scanner.Readline()
		switch {
		case errors.Is(err, io.EOF):
			fmt.Println()
			return nil
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				fmt.Println("\nUse Ctrl + d or /bye to exit.")
			}

			continue
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/set"):
			if err := sess.handleSet(line); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case strings.HasPrefix(line, "/show"):
			sess.show(os.Stdout)
		case strings.HasPrefix(line, "/seed"):
			if err := sess.handleSeed(line); err != nil {
				fmt.Printf("error: %v\n", err)
			}
		case strings.HasPrefix(line, "/help"), strings.HasPrefix(line, "/?"):
			usage()
		case strings.HasPrefix(line, "/exit"), strings.HasPrefix(line, "/bye"):
			return nil
		case strings.HasPrefix(line, "/"):
			args := strings.Fields(line)
			fmt.Printf("Unknown command '%s'. Type /? for help\n", args[0])
		default:
			out, err := sess.process(line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(out)
		}
	}
}

// process verarbeitet eine Caption mit den aktuellen Einstellungen
func (s *captionSession) process(line string) (string, error) {
	proc, err := caption.New(s.params, s.rng)
	if err != nil {
		return "", err
	}
	return proc.Process(line, s.pos), nil
}

// handleSet verarbeitet den /set Befehl
func (s *captionSession) handleSet(line string) error {
	args := strings.Fields(line)
	if len(args) < 2 {
		usageSet()
		return nil
	}

	params := s.params
	switch args[1] {
	case "shuffle":
		params.Shuffle = true
	case "noshuffle":
		params.Shuffle = false
	case "wildcards":
		params.EnableWildcard = true
	case "nowildcards":
		params.EnableWildcard = false
	case "keep":
		if len(args) != 3 {
			return errors.New("usage: /set keep <int>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid count: %w", err)
		}
		params.KeepTokens = n
	case "separator":
		if len(args) != 3 {
			return errors.New("usage: /set separator <string>")
		}
		params.Separator = args[2]
	case "keepseparator":
		if len(args) != 3 {
			return errors.New("usage: /set keepseparator <string>")
		}
		params.KeepTokensSeparator = args[2]
	case "secondary":
		if len(args) != 3 {
			return errors.New("usage: /set secondary <string>")
		}
		params.SecondarySeparator = args[2]
	case "prefix":
		params.Prefix = strings.Join(args[2:], " ")
	case "suffix":
		params.Suffix = strings.Join(args[2:], " ")
	case "dropout":
		if len(args) != 3 {
			return errors.New("usage: /set dropout <rate>")
		}
		rate, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid rate: %w", err)
		}
		params.CaptionDropoutRate = rate
	case "tagdropout":
		if len(args) != 3 {
			return errors.New("usage: /set tagdropout <rate>")
		}
		rate, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid rate: %w", err)
		}
		params.TagDropoutRate = rate
	case "epoch":
		if len(args) != 3 {
			return errors.New("usage: /set epoch <int>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid epoch: %w", err)
		}
		s.pos.Epoch = n
		fmt.Printf("Set epoch to %d\n", n)
		return nil
	case "step":
		if len(args) != 3 {
			return errors.New("usage: /set step <int>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid step: %w", err)
		}
		s.pos.Step = n
		fmt.Printf("Set step to %d\n", n)
		return nil
	default:
		return fmt.Errorf("unknown option '%s'. Type /set for a list", args[1])
	}

	if err := params.Validate(); err != nil {
		return err
	}

	s.params = params
	fmt.Printf("Set %s\n", strings.Join(args[1:], " "))
	return nil
}

// handleSeed verarbeitet den /seed Befehl
func (s *captionSession) handleSeed(line string) error {
	args := strings.Fields(line)
	if len(args) != 2 {
		return errors.New("usage: /seed <int>")
	}

	seed, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	s.rng = newSampleRNG(seed)
	fmt.Printf("Set seed to %d\n", seed)
	return nil
}

// show gibt die aktuellen Einstellungen aus
func (s *captionSession) show(w io.Writer) {
	fmt.Fprintln(w, " ", "Caption processing")
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	rows := [][]string{
		{"", "separator", strconv.Quote(separatorOrDefault(s.params.Separator))},
		{"", "shuffle", strconv.FormatBool(s.params.Shuffle)},
		{"", "wildcards", strconv.FormatBool(s.params.EnableWildcard)},
		{"", "epoch", strconv.Itoa(s.pos.Epoch)},
		{"", "step", strconv.Itoa(s.pos.Step)},
	}
	rows = append(rows, captionRows(s.params)...)

	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(w)
}

// separatorOrDefault liefert den wirksamen Separator
func separatorOrDefault(sep string) string {
	if sep == "" {
		return caption.DefaultSeparator
	}
	return sep
}

// usage zeigt die allgemeine Hilfe an
func usage() {
	fmt.Fprintln(os.Stderr, "Available Commands:")
	fmt.Fprintln(os.Stderr, "  /set            Set processing options")
	fmt.Fprintln(os.Stderr, "  /show           Show current options")
	fmt.Fprintln(os.Stderr, "  /seed <int>     Reset the random source")
	fmt.Fprintln(os.Stderr, "  /bye            Exit")
	fmt.Fprintln(os.Stderr, "  /?, /help       Help for a command")
	fmt.Fprintln(os.Stderr, "")
}

// usageSet zeigt die Hilfe fuer /set Befehle an
func usageSet() {
	fmt.Fprintln(os.Stderr, "Available Commands:")
	fmt.Fprintln(os.Stderr, "  /set shuffle               Enable tag shuffling")
	fmt.Fprintln(os.Stderr, "  /set noshuffle             Disable tag shuffling")
	fmt.Fprintln(os.Stderr, "  /set wildcards             Enable wildcard resolution")
	fmt.Fprintln(os.Stderr, "  /set nowildcards           Disable wildcard resolution")
	fmt.Fprintln(os.Stderr, "  /set keep <int>            Keep the first n tags in place")
	fmt.Fprintln(os.Stderr, "  /set separator <string>    Set the tag separator")
	fmt.Fprintln(os.Stderr, "  /set keepseparator <string>   Set the keep tokens separator")
	fmt.Fprintln(os.Stderr, "  /set secondary <string>    Set the secondary separator")
	fmt.Fprintln(os.Stderr, "  /set prefix <string>       Set the caption prefix")
	fmt.Fprintln(os.Stderr, "  /set suffix <string>       Set the caption suffix")
	fmt.Fprintln(os.Stderr, "  /set dropout <rate>        Set the caption dropout rate")
	fmt.Fprintln(os.Stderr, "  /set tagdropout <rate>     Set the tag dropout rate")
	fmt.Fprintln(os.Stderr, "  /set epoch <int>           Set the simulated epoch")
	fmt.Fprintln(os.Stderr, "  /set step <int>            Set the simulated step")
	fmt.Fprintln(os.Stderr, "")
}
