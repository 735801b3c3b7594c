package cmd

import (
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/clusterdock/clusterdock/internal/app"
	"github.com/clusterdock/clusterdock/pkg/logger"
	"github.com/clusterdock/clusterdock/pkg/version"
)

var (
	cfgFile     string
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "clusterdock",
	Short: "Bootstrap multi-container cluster environments on a Docker host",
	Long: `clusterdock launches a privileged, host-networked controller container
that orchestrates multi-container clusters, and opens sessions into the
cluster nodes it creates.`,
	SilenceUsage: true,
}

// ExecuteCLI is the entry point called from main.
func ExecuteCLI(build, commit, date string) {
	version.Set(build, commit, date)

	rootCmd.AddCommand(newLaunchCommand())
	rootCmd.AddCommand(newSSHCommand())
	rootCmd.AddCommand(newNodesCommand())
	rootCmd.AddCommand(newPortCommand())
	rootCmd.AddCommand(newCleanCommand())
	rootCmd.AddCommand(newVersionCommand())

	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./clusterdock.yaml)")
}

// getApp lazily builds the shared app after flag parsing so --config
// is honored.
func getApp() *app.App {
	if application == nil {
		a, err := app.New(cfgFile)
		if err != nil {
			logger.Fatal("Failed to initialize", "error", err)
		}
		application = a
	}
	return application
}
