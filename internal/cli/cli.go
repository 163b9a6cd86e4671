package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kvloc/internal/config"
	"kvloc/internal/filewalker"
	"kvloc/internal/localization"
	"kvloc/internal/table"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := NewRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

// options carries the persistent flags shared by every command.
type options struct {
	cfg      *config.Config
	root     string
	source   string
	target   string
	logLevel string
}

func (o *options) service() *localization.Service {
	return localization.NewService(table.NewStore(o.root), o.source)
}

func (o *options) walker() *filewalker.Walker {
	return filewalker.NewWalker(o.source)
}

func (o *options) requireTarget() error {
	if o.target == "" {
		return errors.New("no target language: pass --lang or set KVLOC_TARGET_LANGUAGE")
	}
	if o.target == o.source {
		return fmt.Errorf("target language %q is the source language", o.target)
	}
	return nil
}

// NewRootCmd builds the command tree with defaults taken from cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "kvloc",
		Short: "Inspect and edit per-language string tables",
		Long: `kvloc reads the text_<language>/<category>.txt string tables of a game,
reconciles each target language against the source language and reports,
searches, normalizes and fills untranslated strings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("parse log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.root, "root", cfg.Root, "Game root containing the resources folder")
	pf.StringVar(&opts.source, "source", cfg.SourceLanguage, "Source language")
	pf.StringVarP(&opts.target, "lang", "l", cfg.TargetLanguage, "Target language")
	pf.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(languagesCmd(opts))
	rootCmd.AddCommand(categoriesCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(untranslatedCmd(opts))
	rootCmd.AddCommand(findCmd(opts))
	rootCmd.AddCommand(normalizeCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(memoryCmd(opts))
	rootCmd.AddCommand(graphCmd(opts))

	return rootCmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// loadMerged merges a category and tolerates a malformed file when allowed,
// logging what was recovered.
func loadMerged(svc *localization.Service, category, target string, allowPartial bool) ([]table.Record, error) {
	records, err := svc.Load(category, target)
	if err == nil {
		return records, nil
	}
	if allowPartial && errors.Is(err, table.ErrMalformedFile) {
		log.Warn().Err(err).Int("records", len(records)).Msg("Using records recovered from malformed file")
		return records, nil
	}
	return nil, err
}
