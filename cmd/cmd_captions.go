// cmd_captions.go - Caption-Vorschau Commands
// Hauptfunktionen: CaptionsPreviewHandler, CaptionsInteractiveHandler
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/caption"
	"github.com/trainset/trainset/dataset"
	"github.com/trainset/trainset/envconfig"
)

// CaptionsPreviewHandler - Zeigt Captions vor und nach der Verarbeitung
func CaptionsPreviewHandler(cmd *cobra.Command, args []string) error {
	samples, _ := cmd.Flags().GetInt("samples")
	epoch, _ := cmd.Flags().GetInt("epoch")
	step, _ := cmd.Flags().GetInt("step")
	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	plain, _ := cmd.Flags().GetBool("plain")

	seed := envconfig.Seed()
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetInt64("seed")
	}

	cfg, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	rng := newSampleRNG(seed)
	pos := caption.Position{Epoch: epoch, Step: step, MaxSteps: maxSteps}

	var data [][]string
	for _, ds := range resolved {
		for _, ss := range ds.Subsets {
			proc, err := caption.New(ss.Caption, rng)
			if err != nil {
				return err
			}

			texts, err := sampleCaptions(ss, samples)
			if err != nil {
				return err
			}

			for _, text := range texts {
				processed := proc.Process(text, pos)
				if plain {
					fmt.Println(processed)
					continue
				}
				data = append(data, []string{text, processed})
			}
		}
	}

	if plain {
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"BEFORE", "AFTER"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetColWidth(60)
	table.AppendBulk(data)
	table.Render()

	return nil
}

// sampleCaptions - Liest bis zu n Captions aus einem Subset
func sampleCaptions(subset dataset.ResolvedSubset, n int) ([]string, error) {
	paths, err := dataset.ListImages(subset.ImageDir)
	if err != nil {
		return nil, err
	}

	var texts []string
	for _, p := range paths {
		if len(texts) >= n {
			break
		}

		text, _, err := dataset.ReadCaption(subset, p)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}

// newCaptionsCmd - Erstellt den captions Command
func newCaptionsCmd() *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Preview caption processing",
	}

	previewCmd := &cobra.Command{
		Use:   "preview CONFIG",
		Short: "Show captions before and after processing",
		Args:  cobra.ExactArgs(1),
		RunE:  CaptionsPreviewHandler,
	}

	previewCmd.Flags().IntP("samples", "n", 5, "Number of captions to preview per subset")
	previewCmd.Flags().Int("epoch", 1, "Epoch to simulate")
	previewCmd.Flags().Int("step", 0, "Training step to simulate")
	previewCmd.Flags().Int("max-steps", 0, "Total training steps for token warmup")
	previewCmd.Flags().Int64("seed", -1, "Seed for shuffle and dropout (negative: time based)")
	previewCmd.Flags().Bool("plain", false, "Print processed captions only, one per line")

	interactiveCmd := &cobra.Command{
		Use:   "interactive [CONFIG]",
		Short: "Process captions interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  CaptionsInteractiveHandler,
	}

	interactiveCmd.Flags().Int64("seed", -1, "Seed for shuffle and dropout (negative: time based)")

	captionsCmd.AddCommand(previewCmd, interactiveCmd)

	return captionsCmd
}
