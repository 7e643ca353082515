// cmd_model.go - Basis-Modell Commands
// Hauptfunktionen: ModelDetectHandler, ModelListHandler
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/format"
	"github.com/trainset/trainset/huggingface"
	"github.com/trainset/trainset/progress"
)

// ModelDetectHandler - Erkennt die Basis-Modell-Familie
func ModelDetectHandler(cmd *cobra.Command, args []string) error {
	pathOrID := args[0]

	// Lokale Pfade und gecachte Modelle zuerst
	if path, err := huggingface.Resolve(pathOrID); err == nil {
		detection, err := huggingface.DetectModel(path)
		if err != nil {
			return err
		}
		return showDetection(pathOrID, detection, os.Stdout)
	}

	// Bekannte Model-IDs brauchen keinen Dateizugriff
	if known, ok := huggingface.LookupKnownModel(pathOrID); ok {
		return showDetection(pathOrID, &huggingface.Detection{
			Family:     known.Family,
			Resolution: known.Resolution,
			Source:     "known_id",
		}, os.Stdout)
	}

	// Unbekannte Model-ID: Configs vom Hub in den Cache laden
	p := progress.NewProgress(os.Stderr)

	var bar *progress.StepBar
	result, err := huggingface.NewClient().FetchConfigs(cmd.Context(), pathOrID,
		huggingface.WithFetchProgress(func(done, total int) {
			if bar == nil {
				bar = progress.NewStepBar("fetching configs", total)
				p.Add("fetch", bar)
			}
			bar.Set(done)
		}))
	p.StopAndClear()
	if err != nil {
		return err
	}

	detection, err := huggingface.DetectModel(result.SnapshotPath)
	if err != nil {
		return err
	}
	return showDetection(pathOrID, detection, os.Stdout)
}

// showDetection - Gibt das Erkennungs-Ergebnis aus
func showDetection(pathOrID string, d *huggingface.Detection, w io.Writer) error {
	fmt.Fprintln(w, " ", pathOrID)
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	rows := [][]string{
		{"", "family", d.Family},
		{"", "resolution", fmt.Sprintf("%dx%d", d.Resolution[0], d.Resolution[1])},
		{"", "source", d.Source},
	}
	if d.ClassName != "" {
		rows = append(rows, []string{"", "pipeline class", d.ClassName})
	}
	if arch := huggingface.FamilyArchitecture(d.Family); arch != "" {
		rows = append(rows, []string{"", "architecture", arch})
	}

	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(w)

	return nil
}

// ModelListHandler - Listet die Modelle im Hub-Cache auf
func ModelListHandler(cmd *cobra.Command, args []string) error {
	info, err := huggingface.GetCacheInfo()
	if err != nil {
		return err
	}

	var data [][]string
	for _, m := range info.Models {
		if len(args) == 1 && !strings.HasPrefix(strings.ToLower(m.ModelID), strings.ToLower(args[0])) {
			continue
		}

		family := "-"
		if known, ok := huggingface.LookupKnownModel(m.ModelID); ok {
			family = known.Family
		} else if len(m.Revisions) > 0 {
			if snap, err := huggingface.SnapshotPath(m.ModelID, m.Revisions[0]); err == nil {
				if d, err := huggingface.DetectModel(snap); err == nil {
					family = d.Family
				}
			}
		}

		data = append(data, []string{
			m.ModelID,
			family,
			strconv.Itoa(len(m.Revisions)),
			strconv.Itoa(m.FileCount),
			format.HumanBytes(m.TotalSize),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"MODEL", "FAMILY", "REVISIONS", "FILES", "SIZE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// newModelCmd - Erstellt den model Command
func newModelCmd() *cobra.Command {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Detect and list base models",
	}

	detectCmd := &cobra.Command{
		Use:   "detect PATH_OR_ID",
		Short: "Report the base model family of a pipeline, checkpoint or model id",
		Args:  cobra.ExactArgs(1),
		RunE:  ModelDetectHandler,
	}

	listCmd := &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List models in the local hub cache",
		Args:    cobra.MaximumNArgs(1),
		RunE:    ModelListHandler,
	}

	modelCmd.AddCommand(detectCmd, listCmd)

	return modelCmd
}
