package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/askhub/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize askhub configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure askhub and writes the .askhub.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("%s already exists, overwrite", cfgFile),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				return nil
			}
		}

		cfg := config.DefaultConfig()

		providerSelect := promptui.Select{
			Label: "Completion provider",
			Items: []string{string(config.ProviderGroq), string(config.ProviderOpenAI)},
		}
		_, provider, err := providerSelect.Run()
		if err != nil {
			return err
		}
		cfg.Provider = config.ProviderType(provider)
		if cfg.Provider == config.ProviderOpenAI {
			cfg.Model = "gpt-4o-mini"
		}

		modelPrompt := promptui.Prompt{
			Label:   "Model",
			Default: cfg.Model,
		}
		if cfg.Model, err = modelPrompt.Run(); err != nil {
			return err
		}

		webSelect := promptui.Select{
			Label: "Web search client",
			Items: []string{string(config.WebClientDuckDuckGo), string(config.WebClientSerpAPI)},
		}
		_, webClient, err := webSelect.Run()
		if err != nil {
			return err
		}
		cfg.WebClient = config.WebClientType(webClient)

		portPrompt := promptui.Prompt{
			Label:   "Server port",
			Default: strconv.Itoa(cfg.Port),
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 || n > 65535 {
					return fmt.Errorf("port must be between 1 and 65535")
				}
				return nil
			},
		}
		portStr, err := portPrompt.Run()
		if err != nil {
			return err
		}
		cfg.Port, _ = strconv.Atoi(portStr)

		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("\nWrote %s\n", cfgFile)
		fmt.Printf("Set %s for completions and OPENAI_API_KEY for embeddings.\n",
			config.APIKeyEnvVar(cfg.Provider))
		if cfg.WebClient == config.WebClientSerpAPI {
			fmt.Println("Set SERPAPI_KEY for the serpapi web client.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
