package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "maploader",
	Short: "Resource loading and caching engine for map rendering",
	Long: `maploader fetches map resources (tiles, styles, sprites) with
adaptive retry, HTTP revalidation and a cache-first loading path.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("maploader version {{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
