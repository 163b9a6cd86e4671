package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"kvloc/internal/config"
	"kvloc/internal/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func graphCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Publish translation coverage to Neo4j",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "publish",
		Short: "Publish every category of the target language and print stored coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireTarget(); err != nil {
				return err
			}
			return runGraphPublish(opts, cmd)
		},
	})
	return cmd
}

// connectNeo4j creates a driver and verifies connectivity.
func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

// runGraphPublish handles the `graph publish` command.
func runGraphPublish(opts *options, cmd *cobra.Command) error {
	ctx, cancel := setupContext()
	defer cancel()

	driver, err := connectNeo4j(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graph.NewGraphBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	cats, err := opts.walker().Categories(opts.root)
	if err != nil {
		return err
	}

	svc := opts.service()
	for _, category := range cats {
		records, err := loadMerged(svc, category, opts.target, true)
		if err != nil {
			log.Error().Err(err).Str("category", category).Msg("Skipping category")
			continue
		}
		if err := builder.PublishCategory(ctx, opts.target, category, records); err != nil {
			return err
		}
	}

	coverage, err := graph.NewGraphQuerier(driver).Coverage(ctx, opts.target)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tLOCALIZED\tTOTAL\tPERCENT")
	for _, c := range coverage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f%%\n", c.Category, c.Localized, c.Total, c.Percent())
	}
	return tw.Flush()
}
