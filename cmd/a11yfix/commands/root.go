// Package commands implements the CLI commands for a11yfix.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/a11yfix/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "a11yfix",
	Short: "Repair common accessibility defects in rendered HTML content",
	Long: `a11yfix rewrites rendered post content so that it passes common
accessibility checks:

  - embedded iframes get a title and lose frameborder
  - TablePress tables get a summary from their description
  - empty headings are removed
  - <b> and <i> become <strong> and <em>

Examples:
  # Filter a file to stdout
  a11yfix fix post.html

  # Filter a published page in place of its body
  a11yfix fix --selector .entry-content https://example.edu/news/

  # Fix files in place and print what changed
  a11yfix fix --write --stats content/*.html

  # Run the HTTP filter service
  a11yfix serve --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.a11yfix.yaml or ./.a11yfix.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".a11yfix")
		viper.SetConfigType("yaml")
	}

	// A11YFIX_FILTER_TAG_MODE=tree etc.
	viper.SetEnvPrefix("A11YFIX")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && viper.GetString("config") != "" {
			logError("reading config: %v", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
