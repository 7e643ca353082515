// cmd_dataset.go - Dataset Commands
// Hauptfunktionen: DatasetScanHandler, showScans
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/trainset/trainset/dataset"
	"github.com/trainset/trainset/envconfig"
	"github.com/trainset/trainset/format"
	"github.com/trainset/trainset/progress"
)

// DatasetScanHandler - Scannt die Datensaetze einer Konfiguration
func DatasetScanHandler(cmd *cobra.Command, args []string) error {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	withDigest, _ := cmd.Flags().GetBool("digest")

	cfg, err := dataset.Load(args[0])
	if err != nil {
		return err
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	scanner := &dataset.Scanner{
		Workers:    int(envconfig.Workers()),
		WithDigest: withDigest,
	}

	if !noCache && !envconfig.NoCache() {
		cache, err := dataset.OpenCache(filepath.Join(envconfig.CacheDir(), "scan.db"))
		if err != nil {
			slog.Warn("scan cache unavailable", "error", err)
		} else {
			defer cache.Close()
			scanner.Cache = cache
		}
	}

	p := progress.NewProgress(os.Stderr)

	var (
		bar      *progress.StepBar
		lastDone int
		n        int
	)
	scanner.Progress = func(done, total int) {
		if bar == nil || done < lastDone {
			n++
			bar = progress.NewStepBar(fmt.Sprintf("scanning dataset %d", n), total)
			p.Add(strconv.Itoa(n), bar)
		}

		lastDone = done
		bar.Set(done)
	}

	scans, err := scanner.Scan(cmd.Context(), resolved)
	p.StopAndClear()
	if err != nil {
		return err
	}

	return showScans(scans, os.Stdout)
}

// showScans - Gibt Scan-Ergebnisse und Bucket-Belegung aus
func showScans(scans []dataset.DatasetScan, w io.Writer) error {
	for i, scan := range scans {
		stats := dataset.ComputeStats(&scan)

		fmt.Fprintln(w, " ", fmt.Sprintf("Dataset %d", i+1))
		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.AppendBulk(statsRows(stats))
		table.Render()
		fmt.Fprintln(w)

		if len(scan.Buckets) == 0 {
			continue
		}

		var data [][]string
		for _, bucket := range scan.Buckets {
			count := scan.BucketCounts[bucket]
			data = append(data, []string{
				fmt.Sprintf("%dx%d", bucket[0], bucket[1]),
				strconv.Itoa(count),
			})
		}

		buckets := tablewriter.NewWriter(w)
		buckets.SetHeader([]string{"BUCKET", "IMAGES"})
		buckets.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		buckets.SetAlignment(tablewriter.ALIGN_LEFT)
		buckets.SetHeaderLine(false)
		buckets.SetBorder(false)
		buckets.SetNoWhiteSpace(true)
		buckets.SetTablePadding("    ")
		buckets.AppendBulk(data)
		buckets.Render()
		fmt.Fprintln(w)
	}

	return nil
}

// statsRows - Baut die Tabellenzeilen der Scan-Kennzahlen
func statsRows(stats dataset.Stats) (rows [][]string) {
	rows = append(rows, []string{"", "images", strconv.Itoa(stats.Images)})
	rows = append(rows, []string{"", "with repeats", strconv.Itoa(stats.Repeated)})
	if stats.MissingCaptions > 0 {
		rows = append(rows, []string{"", "missing captions", strconv.Itoa(stats.MissingCaptions)})
	}
	rows = append(rows, []string{"", "distinct tags", strconv.Itoa(stats.DistinctTags)})
	if stats.Buckets > 0 {
		rows = append(rows, []string{"", "buckets", strconv.Itoa(stats.Buckets)})
	}
	if stats.Images > 0 {
		rows = append(rows, []string{"", "aspect ratio", fmt.Sprintf("%.2f +/- %.2f", stats.AspectMean, stats.AspectStdDev)})
		rows = append(rows, []string{"", "area p25/p50/p75", fmt.Sprintf("%s / %s / %s px",
			format.HumanNumber(uint64(stats.AreaQuantiles[0])),
			format.HumanNumber(uint64(stats.AreaQuantiles[1])),
			format.HumanNumber(uint64(stats.AreaQuantiles[2])))})
	}
	return
}

// newDatasetCmd - Erstellt den dataset Command
func newDatasetCmd() *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Scan and inspect training datasets",
	}

	scanCmd := &cobra.Command{
		Use:   "scan CONFIG",
		Short: "Scan datasets and show bucket assignments",
		Args:  cobra.ExactArgs(1),
		RunE:  DatasetScanHandler,
	}

	scanCmd.Flags().Bool("no-cache", false, "Do not read or write the scan cache")
	scanCmd.Flags().Bool("digest", false, "Compute a sha256 digest per image")

	datasetCmd.AddCommand(scanCmd)

	return datasetCmd
}
