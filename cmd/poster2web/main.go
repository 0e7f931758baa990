package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thywilljoshua/poster-to-web/internal/ai"
	"github.com/thywilljoshua/poster-to-web/internal/config"
	"github.com/thywilljoshua/poster-to-web/internal/convert"
	"github.com/thywilljoshua/poster-to-web/internal/export"
	"github.com/thywilljoshua/poster-to-web/internal/store"
)

// app is the state shared by every subcommand once the root has loaded
// the configuration.
type app struct {
	cfg config.Config
	log *logrus.Logger

	ai      ai.Enhancer
	aiReady bool
}

func main() {
	a := &app{}
	var cfgFile, logLevel string

	root := &cobra.Command{
		Use:           "poster2web",
		Short:         "Turn a research poster PDF into an editable document and a website",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			log, err := cfg.Log.NewLogger(os.Stderr)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./poster2web.yaml or ~/.config/poster2web/poster2web.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level: debug|info|warn|error")

	root.AddCommand(extractCmd(a), exportCmd(a), serveCmd(a), docsCmd(a))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// enhancer returns the configured AI backend, or nil when AI is off. A
// Gemini client that cannot be built is logged and skipped.
func (a *app) enhancer(ctx context.Context) ai.Enhancer {
	if a.aiReady || !a.cfg.AI.Enabled() {
		return a.ai
	}
	a.aiReady = true
	g, err := ai.NewGemini(ctx, a.cfg.AI.APIKey, a.cfg.AI.Model, a.log)
	if err != nil {
		a.log.WithError(err).Warn("AI disabled")
		return nil
	}
	a.ai = g
	return a.ai
}

func (a *app) convertConfig(ctx context.Context) convert.Config {
	return convert.Config{
		AIExclusive: a.cfg.AI.Exclusive,
		Enhancer:    a.enhancer(ctx),
		Logger:      a.log,
	}
}

func (a *app) exportOptions(ctx context.Context) (export.Options, error) {
	format, err := export.ParseFormat(a.cfg.Export.Format)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{
		Format:     format,
		Style:      a.cfg.Export.Style(),
		SiteName:   a.cfg.Export.SiteName,
		SlugPrefix: a.cfg.Export.SlugPrefix,
		Enhancer:   a.enhancer(ctx),
		Logger:     a.log,
	}, nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.Store.Path, a.log)
}
