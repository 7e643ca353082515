// cmd_lora.go - LoRA Commands
// Hauptfunktionen: LoraInspectHandler, LoraHashHandler, LoraConvertHandler
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/format"
	"github.com/trainset/trainset/lora"
	"github.com/trainset/trainset/metadata"
	"github.com/trainset/trainset/progress"
	"github.com/trainset/trainset/safetensors"
)

// LoraInspectHandler - Zeigt den Aufbau einer LoRA-Gewichtsdatei
func LoraInspectHandler(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	p := progress.NewProgress(os.Stderr)
	spinner := progress.NewSpinner("")
	p.Add("", spinner)

	network, err := lora.Describe(args[0])
	if err != nil {
		p.StopAndClear()
		return err
	}

	hashes, err := fileHashes(args[0])
	p.StopAndClear()
	if err != nil {
		return err
	}

	return showNetwork(network, hashes, verbose, os.Stdout)
}

// LoraHashHandler - Gibt die Hashes einer Gewichtsdatei aus
func LoraHashHandler(cmd *cobra.Command, args []string) error {
	rows, err := fileHashes(args[0])
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()

	return nil
}

// LoraConvertHandler - Konvertiert Tensor-Namen zwischen Schemata
func LoraConvertHandler(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	invert, _ := cmd.Flags().GetBool("invert")
	blocks, _ := cmd.Flags().GetInt("blocks")

	if output == "" {
		return errors.New("missing output path, use -o")
	}

	f, err := safetensors.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rules := lora.AlphaVLLMToDiffusers
	if invert {
		rules = rules.Invert()
	}

	names := f.Names()
	if blocks <= 0 {
		blocks = inferBlocks(names)
	}

	mapping := rules.Convert(names, blocks)

	p := progress.NewProgress(os.Stderr)
	bar := progress.NewStepBar("converting", len(names))
	p.Add("convert", bar)

	var renamed int
	tensors := make([]safetensors.Tensor, 0, len(names))
	for i, name := range names {
		info, data, err := f.TensorBytes(name)
		if err != nil {
			p.StopAndClear()
			return err
		}

		newName := mapping[name]
		if newName != name {
			renamed++
		}

		tensors = append(tensors, safetensors.Tensor{
			Name:  newName,
			DType: info.DType,
			Shape: info.Shape,
			Data:  data,
		})
		bar.Set(i + 1)
	}

	err = safetensors.WriteFile(output, tensors, f.Metadata())
	p.StopAndClear()
	if err != nil {
		return err
	}

	fmt.Printf("Renamed %d of %d tensors\n", renamed, len(names))

	rows, err := fileHashes(output)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()

	return nil
}

var blockIndex = regexp.MustCompile(`\.(\d+)\.`)

// inferBlocks - Bestimmt die Blockzahl aus den Tensor-Namen
func inferBlocks(names []string) int {
	maxIndex := -1
	for _, name := range names {
		for _, m := range blockIndex.FindAllStringSubmatch(name, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxIndex {
				maxIndex = n
			}
		}
	}

	if maxIndex < 0 {
		return 1
	}
	return maxIndex + 1
}

// fileHashes - Berechnet die Hashes einer Gewichtsdatei
func fileHashes(path string) ([][]string, error) {
	var rows [][]string

	if strings.EqualFold(filepath.Ext(path), ".safetensors") {
		hash, err := lora.ModelHash(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{"", "model hash", hash})
	}

	legacy, err := lora.LegacyHash(path)
	if err != nil {
		return nil, err
	}
	rows = append(rows, []string{"", "legacy hash", legacy})

	return rows, nil
}

// showNetwork - Gibt Netzwerk-Aufbau und Metadaten aus
func showNetwork(network *lora.Network, hashes [][]string, verbose bool, w io.Writer) error {
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

	tableRender("Network", func() (rows [][]string) {
		rows = append(rows, []string{"", "modules", strconv.Itoa(len(network.Modules))})

		var ranks []string
		for _, r := range network.Ranks() {
			ranks = append(ranks, strconv.Itoa(r))
		}
		rows = append(rows, []string{"", "ranks", strings.Join(ranks, ", ")})

		byPrefix := network.ByPrefix()
		for _, prefix := range []string{
			lora.PrefixUNet,
			lora.PrefixTextEncoder1,
			lora.PrefixTextEncoder2,
			lora.PrefixTextEncoder3,
			lora.PrefixTextEncoder,
		} {
			if n := byPrefix[prefix]; n > 0 {
				rows = append(rows, []string{"", prefix, strconv.Itoa(n)})
			}
		}
		if n := byPrefix[""]; n > 0 {
			rows = append(rows, []string{"", "other", strconv.Itoa(n)})
		}
		if network.TrainsT5() {
			rows = append(rows, []string{"", "trains T5", "yes"})
		}

		rows = append(rows, hashes...)
		return
	})

	if spec, ok := metadata.ParseModelSpec(network.Metadata); ok {
		tableRender("Model spec", func() (rows [][]string) {
			if spec.Architecture != "" {
				rows = append(rows, []string{"", "architecture", spec.Architecture})
			}
			if spec.Implementation != "" {
				rows = append(rows, []string{"", "implementation", spec.Implementation})
			}
			if spec.Title != "" {
				rows = append(rows, []string{"", "title", spec.Title})
			}
			if !spec.Date.IsZero() {
				rows = append(rows, []string{"", "date", format.HumanTime(spec.Date, "-")})
			}
			if spec.Resolution != [2]int{} {
				rows = append(rows, []string{"", "resolution", fmt.Sprintf("%dx%d", spec.Resolution[0], spec.Resolution[1])})
			}
			if spec.PredictionType != "" {
				rows = append(rows, []string{"", "prediction type", spec.PredictionType})
			}
			return
		})
	}

	if run := metadata.Parse(network.Metadata); run.SessionID != "" || run.OutputName != "" {
		tableRender("Training", func() (rows [][]string) {
			if run.OutputName != "" {
				rows = append(rows, []string{"", "output name", run.OutputName})
			}
			if !run.StartedAt.IsZero() {
				rows = append(rows, []string{"", "started", format.HumanTime(run.StartedAt, "-")})
			}
			if run.BaseModelName != "" {
				rows = append(rows, []string{"", "base model", run.BaseModelName})
			}
			if run.BaseModelVersion != "" {
				rows = append(rows, []string{"", "base version", run.BaseModelVersion})
			}
			if run.BaseModelHash != "" {
				rows = append(rows, []string{"", "base hash", run.BaseModelHash})
			}
			if run.Resolution != [2]int{} {
				rows = append(rows, []string{"", "resolution", fmt.Sprintf("%dx%d", run.Resolution[0], run.Resolution[1])})
			}
			if run.Seed != nil {
				rows = append(rows, []string{"", "seed", strconv.FormatInt(*run.Seed, 10)})
			}
			if run.NumTrainImages > 0 {
				rows = append(rows, []string{"", "train images", strconv.Itoa(run.NumTrainImages)})
			}
			if run.NumRegImages > 0 {
				rows = append(rows, []string{"", "reg images", strconv.Itoa(run.NumRegImages)})
			}
			if run.NetworkModule != "" {
				rows = append(rows, []string{"", "network module", run.NetworkModule})
			}
			if run.NetworkDim > 0 {
				rows = append(rows, []string{"", "network dim", strconv.Itoa(run.NetworkDim)})
			}
			if run.NetworkAlpha > 0 {
				rows = append(rows, []string{"", "network alpha", strconv.FormatFloat(run.NetworkAlpha, 'g', -1, 64)})
			}
			if len(run.Datasets) > 0 {
				rows = append(rows, []string{"", "datasets", strconv.Itoa(len(run.Datasets))})
			}
			return
		})
	}

	modules := network.Modules
	var truncated int
	if !verbose && len(modules) > 20 {
		truncated = len(modules) - 20
		modules = modules[:20]
	}

	var data [][]string
	for _, m := range modules {
		alpha := "-"
		if m.Alpha != 0 {
			alpha = strconv.FormatFloat(m.Alpha, 'g', -1, 64)
		}
		data = append(data, []string{
			m.Name,
			strconv.Itoa(m.Rank),
			alpha,
			strconv.FormatFloat(m.Scale(), 'g', 4, 64),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"MODULE", "RANK", "ALPHA", "SCALE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	if truncated > 0 {
		fmt.Fprintf(w, "... and %d more modules (use --verbose to show all)\n", truncated)
	}
	fmt.Fprintln(w)

	if verbose && len(network.Metadata) > 0 {
		tableRender("Metadata", func() (rows [][]string) {
			keys := make([]string, 0, len(network.Metadata))
			for k := range network.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				v := network.Metadata[k]
				if r := []rune(v); len(r) > 100 {
					v = string(r[:97]) + "..."
				}
				rows = append(rows, []string{"", k, v})
			}
			return
		})
	}

	return nil
}

// newLoraCmd - Erstellt den lora Command
func newLoraCmd() *cobra.Command {
	loraCmd := &cobra.Command{
		Use:   "lora",
		Short: "Inspect and convert LoRA weights",
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect WEIGHTS",
		Short: "Show modules, ranks and metadata of a weights file",
		Args:  cobra.ExactArgs(1),
		RunE:  LoraInspectHandler,
	}

	inspectCmd.Flags().Bool("verbose", false, "Show all modules and the raw metadata")

	hashCmd := &cobra.Command{
		Use:   "hash WEIGHTS",
		Short: "Print the hashes of a weights file",
		Args:  cobra.ExactArgs(1),
		RunE:  LoraHashHandler,
	}

	convertCmd := &cobra.Command{
		Use:   "convert WEIGHTS",
		Short: "Rename tensors between key schemas",
		Args:  cobra.ExactArgs(1),
		RunE:  LoraConvertHandler,
	}

	convertCmd.Flags().StringP("output", "o", "", "Output path for the converted file")
	convertCmd.Flags().Bool("invert", false, "Apply the conversion table in reverse")
	convertCmd.Flags().Int("blocks", 0, "Number of transformer blocks (0: infer from keys)")

	loraCmd.AddCommand(inspectCmd, hashCmd, convertCmd)

	return loraCmd
}
