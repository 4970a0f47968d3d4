// Command msgrisk scores messages from the command line, runs the daemon and
// manages the database schema.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/antifraud/msgrisk/internal/infrastructure/config"
	"github.com/antifraud/msgrisk/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:           "msgrisk",
		Short:         "Fraud message risk scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("model-url", "", `inference server base URL, or "stub"`)
	flags.String("keywords", "", "keyword vocabulary JSON file")
	flags.String("vocab", "", "tokenizer vocab.txt")

	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = c.v.BindPFlag("model.inference_url", flags.Lookup("model-url"))
	_ = c.v.BindPFlag("keywords.vocabulary_path", flags.Lookup("keywords"))
	_ = c.v.BindPFlag("model.vocab_path", flags.Lookup("vocab"))

	root.AddCommand(
		c.scoreCmd(),
		c.keywordsCmd(),
		c.serveCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Service.Name,
		Output:  os.Stderr,
	})
	return nil
}
