package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Ingest documents into the knowledge base",
	Long: `Ingests matching files into the document index. Patterns support
doublestar globs, e.g. "docs/**/*.md". Re-ingesting a file replaces its
previous entries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return err
		}
		store := createStoreFromConfig(cfg, embedder)
		pipeline := createPipelineFromConfig(cfg, store)

		var files []string
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				if pipeline.Supports(filepath.Base(m)) {
					files = append(files, m)
				}
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no supported files match the given patterns")
		}

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("ingesting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		ctx := context.Background()
		var totalChunks, failed int
		for _, file := range files {
			result, err := pipeline.Ingest(ctx, file)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "\n%s: %v\n", file, err)
			} else {
				totalChunks += result.ChunkCount
			}
			bar.Add(1)
		}

		fmt.Printf("ingested %d of %d files, %d chunks indexed (%d total entries)\n",
			len(files)-failed, len(files), totalChunks, store.Count())
		if failed > 0 {
			return fmt.Errorf("%d files failed to ingest", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
