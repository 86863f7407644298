package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/app"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "competences",
	Short: "Competency self-assessment from the terminal",
	Long: "Competences runs timed competency assessments and opinion surveys,\n" +
		"scores them, and tracks per-area progress toward target levels.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to store file (overrides COMPETENCES_DB env var)")
	rootCmd.PersistentFlags().String("store", "", "Store driver: sqlite or json")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// openApp resolves configuration from file, environment and flags, then
// builds the wired application. Flags win over everything else.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Path = p
	}
	if d, _ := cmd.Flags().GetString("store"); d != "" {
		cfg.Store.Driver = d
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return app.New(cmd.Context(), cfg)
}
