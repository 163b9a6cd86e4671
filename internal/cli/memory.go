package cli

import (
	"context"
	"fmt"

	"kvloc/internal/cache"
	"kvloc/internal/config"
	"kvloc/internal/localization"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func memoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Share translations across categories through a PostgreSQL translation memory",
	}
	cmd.AddCommand(memoryPushCmd(opts))
	cmd.AddCommand(memoryFillCmd(opts))
	return cmd
}

func memoryPushCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Store every localized record of the target language in the memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			return runMemoryPush(opts)
		},
	}
}

func memoryFillCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <category>",
		Short: "Fill untranslated records of a category from the memory and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			skip, _ := cmd.Flags().GetBool("skip-untranslated")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runMemoryFill(opts, args[0], skip, dryRun)
		},
	}
	cmd.Flags().Bool("skip-untranslated", opts.cfg.SkipUntranslated, "Omit records whose text equals the source text")
	cmd.Flags().Bool("dry-run", false, "Report what would be filled without saving")
	return cmd
}

// connectPostgres opens and pings the pool.
func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// runMemoryPush handles the `memory push` command.
func runMemoryPush(opts *options) error {
	ctx, cancel := setupContext()
	defer cancel()

	pool, err := connectPostgres(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	tm := cache.NewTranslationMemory(pool, opts.target)
	if err := tm.EnsureSchema(ctx); err != nil {
		return err
	}

	cats, err := opts.walker().Categories(opts.root)
	if err != nil {
		return err
	}

	svc := opts.service()
	stored := 0
	for _, category := range cats {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := loadMerged(svc, category, opts.target, true)
		if err != nil {
			log.Error().Err(err).Str("category", category).Msg("Skipping category")
			continue
		}
		for _, r := range records {
			if r.English == r.Localized || !localization.Classify(r) {
				continue
			}
			if err := tm.Set(ctx, r.English, r.Localized); err != nil {
				return err
			}
			stored++
		}
	}

	log.Info().Int("categories", len(cats)).Int("stored", stored).Str("language", opts.target).Msg("Translation memory updated")
	return nil
}

// runMemoryFill handles the `memory fill` command.
func runMemoryFill(opts *options, category string, skipUntranslated, dryRun bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	pool, err := connectPostgres(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	tm := cache.NewTranslationMemory(pool, opts.target)
	if err := tm.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := tm.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload translation memory")
	}

	svc := opts.service()
	records, err := loadMerged(svc, category, opts.target, false)
	if err != nil {
		return err
	}

	filled := localization.Fill(records, tm.Lookup(ctx))
	log.Info().Int("filled", filled).Int("total", len(records)).Str("category", category).Msg("Filled from translation memory")

	if dryRun || filled == 0 {
		return nil
	}
	return svc.SaveTable(category, opts.target, records, skipUntranslated)
}
