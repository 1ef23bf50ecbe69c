package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkeye/VoipWeb/internal/config"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var initOutput string

var InitConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := yaml.Marshal(config.Default())
		if err != nil {
			return err
		}
		if initOutput == "" || initOutput == "-" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists", initOutput)
		}
		if err := os.MkdirAll(filepath.Dir(initOutput), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(initOutput, out, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", initOutput)
		return nil
	},
}

var ShowConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Print the effective configuration (file, env and defaults merged)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		shown := *cfg
		if shown.Server.Secret != "" {
			shown.Server.Secret = "********"
		}
		out, err := yaml.Marshal(shown)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	InitConfigCmd.Flags().StringVarP(&initOutput, "output", "o", "", "destination file (stdout when empty)")
}
