package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/a11yfix/internal/server"
	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP filter service",
	Long: `Serve the filter over HTTP.

Endpoints:
  POST /v1/filters/{hook}  raw HTML in, filtered HTML out
  POST /v1/transform       {"html": "..."} in, {"html", "stats", "warnings"} out
  GET  /v1/filters         registered hooks
  GET  /healthz            liveness
  GET  /metrics            Prometheus metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("max-body", "10MB", "max request body size")
	flags.Bool("legacy", false, "read TablePress ids by position, for compatibility with the WordPress plugin")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.max_body", flags.Lookup("max-body"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if legacy, _ := cmd.Flags().GetBool("legacy"); legacy {
		viper.Set("legacy", true)
	}
	cfg, err := filterConfig(viper.GetViper())
	if err != nil {
		return err
	}

	maxBody, err := byteSize(viper.GetString("server.max_body"))
	if err != nil {
		return err
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(server.Options{
		Addr:        viper.GetString("server.addr"),
		MaxBodySize: maxBody,
		Cleaner:     a11y.New(cfg),
	})
	return srv.Run(ctx)
}
