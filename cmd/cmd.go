// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trainset/trainset/envconfig"
	"github.com/trainset/trainset/logutil"
	"github.com/trainset/trainset/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// versionHandler - Gibt die Versionsnummer aus
func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Println("trainset version", version.Version)
}

// newVersionCmd - Erstellt den version Command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run:   versionHandler,
	}
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "trainset",
		Short:         "Training dataset toolkit for diffusion fine-tuning",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	configCmd := newConfigCmd()
	captionsCmd := newCaptionsCmd()
	datasetCmd := newDatasetCmd()
	loraCmd := newLoraCmd()
	modelCmd := newModelCmd()
	versionCmd := newVersionCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()

	for _, cmd := range []*cobra.Command{
		configCmd,
		captionsCmd,
		datasetCmd,
		loraCmd,
		modelCmd,
	} {
		switch cmd {
		case captionsCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["TRAINSET_SEED"],
				envVars["TRAINSET_NOHISTORY"],
			})
		case datasetCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["TRAINSET_CACHE"],
				envVars["TRAINSET_NOCACHE"],
				envVars["TRAINSET_WORKERS"],
			})
		case modelCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["HF_HOME"],
				envVars["HF_HUB_CACHE"],
				envVars["HF_TOKEN"],
				envVars["HTTPS_PROXY"],
			})
		default:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["TRAINSET_DEBUG"]})
		}
	}

	rootCmd.AddCommand(
		configCmd,
		captionsCmd,
		datasetCmd,
		loraCmd,
		modelCmd,
		versionCmd,
	)

	return rootCmd
}
