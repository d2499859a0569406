package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "askhub",
	Short: "Multi-source question answering over documents, the web and arXiv",
	Long: `askhub answers questions by routing each query to the right retrieval
sources: an ingested document index, live web search, and arXiv. Retrieved
passages are synthesized into a cited answer, and every request is recorded
in a bounded audit log.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; environment variables win either way.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".askhub.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
