// cmd_config.go - Config Commands und Anzeige der aufgeloesten Werte
// Hauptfunktionen: ConfigValidateHandler, showResolved
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/caption"
	"github.com/trainset/trainset/dataset"
)

// ConfigValidateHandler - Prueft eine Dataset-Konfiguration
func ConfigValidateHandler(cmd *cobra.Command, args []string) error {
	cfg, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	return showResolved(resolved, os.Stdout)
}

// showResolved - Gibt die aufgeloeste Konfiguration aus
func showResolved(datasets []dataset.ResolvedDataset, w io.Writer) error {
	tableRender := func(header string, rows func() [][]string) {
		fmt.Fprintln(w, " ", header)
		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.AppendBulk(rows())
		table.Render()
		fmt.Fprintln(w)
	}

	var subsets int
	for i, ds := range datasets {
		tableRender(fmt.Sprintf("Dataset %d", i+1), func() (rows [][]string) {
			rows = append(rows, []string{"", "resolution", fmt.Sprintf("%dx%d", ds.Resolution[0], ds.Resolution[1])})
			rows = append(rows, []string{"", "batch size", strconv.Itoa(ds.BatchSize)})
			if ds.EnableBucket {
				rows = append(rows, []string{"", "buckets", fmt.Sprintf("%d-%d px, steps of %d", ds.MinBucketReso, ds.MaxBucketReso, ds.BucketResoSteps)})
				if ds.BucketNoUpscale {
					rows = append(rows, []string{"", "bucket upscale", "disabled"})
				}
			}
			return
		})

		for _, ss := range ds.Subsets {
			subsets++
			header := fmt.Sprintf("Subset %s", ss.ImageDir)
			if ss.Name != "" {
				header = fmt.Sprintf("Subset %s (%s)", ss.Name, ss.ImageDir)
			}

			tableRender(header, func() (rows [][]string) {
				if ss.IsReg {
					rows = append(rows, []string{"", "regularization", "yes"})
				}
				rows = append(rows, []string{"", "repeats", strconv.Itoa(ss.NumRepeats)})
				rows = append(rows, []string{"", "caption extension", ss.CaptionExtension})
				if ss.ClassTokens != "" {
					rows = append(rows, []string{"", "class tokens", ss.ClassTokens})
				}
				rows = append(rows, captionRows(ss.Caption)...)
				if ss.FlipAug {
					rows = append(rows, []string{"", "flip augmentation", "yes"})
				}
				if ss.ColorAug {
					rows = append(rows, []string{"", "color augmentation", "yes"})
				}
				if ss.RandomCrop {
					rows = append(rows, []string{"", "random crop", "yes"})
				}
				if ss.CleanCaption {
					rows = append(rows, []string{"", "clean caption", "yes"})
				}
				return
			})
		}
	}

	fmt.Fprintf(w, "OK: %d datasets, %d subsets\n", len(datasets), subsets)
	return nil
}

// captionRows - Baut die Tabellenzeilen fuer Caption-Einstellungen
func captionRows(p caption.Params) (rows [][]string) {
	if p.Prefix != "" {
		rows = append(rows, []string{"", "caption prefix", p.Prefix})
	}
	if p.Suffix != "" {
		rows = append(rows, []string{"", "caption suffix", p.Suffix})
	}
	if p.Separator != caption.DefaultSeparator {
		rows = append(rows, []string{"", "separator", strconv.Quote(p.Separator)})
	}
	if p.Shuffle {
		rows = append(rows, []string{"", "shuffle", "yes"})
	}
	if p.KeepTokens > 0 {
		rows = append(rows, []string{"", "keep tokens", strconv.Itoa(p.KeepTokens)})
	}
	if p.KeepTokensSeparator != "" {
		rows = append(rows, []string{"", "keep tokens separator", strconv.Quote(p.KeepTokensSeparator)})
	}
	if p.SecondarySeparator != "" {
		rows = append(rows, []string{"", "secondary separator", strconv.Quote(p.SecondarySeparator)})
	}
	if p.EnableWildcard {
		rows = append(rows, []string{"", "wildcards", "yes"})
	}
	if p.CaptionDropoutRate > 0 {
		rows = append(rows, []string{"", "caption dropout", formatRate(p.CaptionDropoutRate)})
	}
	if p.DropoutEveryNEpochs > 0 {
		rows = append(rows, []string{"", "caption dropout every", fmt.Sprintf("%d epochs", p.DropoutEveryNEpochs)})
	}
	if p.TagDropoutRate > 0 {
		rows = append(rows, []string{"", "tag dropout", formatRate(p.TagDropoutRate)})
	}
	if p.TokenWarmupStep > 0 {
		rows = append(rows, []string{"", "token warmup", fmt.Sprintf("min %d, step %g", p.TokenWarmupMin, p.TokenWarmupStep)})
	}
	if len(p.Replacements) > 0 {
		var pairs []string
		for _, r := range p.Replacements {
			pairs = append(pairs, fmt.Sprintf("%s -> %s", strconv.Quote(r.From), strings.Join(r.To, " | ")))
		}
		rows = append(rows, []string{"", "replacements", strings.Join(pairs, ", ")})
	}
	return
}

// formatRate - Formatiert eine Rate als Prozentwert
func formatRate(r float64) string {
	return strconv.FormatFloat(r*100, 'f', -1, 64) + "%"
}

// newConfigCmd - Erstellt den config Command
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Work with dataset configs",
	}

	validateCmd := &cobra.Command{
		Use:   "validate CONFIG",
		Short: "Validate a dataset config and show the resolved values",
		Args:  cobra.ExactArgs(1),
		RunE:  ConfigValidateHandler,
	}

	configCmd.AddCommand(validateCmd)

	return configCmd
}
