package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var askShowSources bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question and exit",
	Long:  `Routes the question to the relevant retrieval sources, synthesizes an answer with citations, and prints it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		orch, _, _, _, database, err := createOrchestratorFromConfig(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		query := strings.Join(args, " ")
		resp, err := orch.Handle(context.Background(), query)
		if err != nil {
			return err
		}

		fmt.Println(resp.Answer)

		if verbose {
			fmt.Printf("\nrouting: %s (%s, confidence %.2f)\n",
				resp.Decision.Rationale, resp.Decision.Strategy, resp.Decision.Confidence)
			for _, outcome := range resp.Outcomes {
				status := "ok"
				if !outcome.Success {
					status = "failed: " + outcome.Err
				}
				fmt.Printf("  %-13s %s (%s)\n", outcome.Capability, status, outcome.Elapsed.Round(time.Millisecond))
			}
		}

		if askShowSources && len(resp.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, src := range resp.Sources {
				fmt.Printf("  - %s\n", src)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askShowSources, "sources", true, "print the list of sources")
	rootCmd.AddCommand(askCmd)
}
