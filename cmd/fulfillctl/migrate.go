package main

import (
	"fmt"

	"scent-fulfillment/internal/pkg/config"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var (
		schemaFile string
		devURL     string
		atlasBin   string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema in migrations/ to the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			client, err := atlasexec.NewClient(".", atlasBin)
			if err != nil {
				return fmt.Errorf("atlas client: %w", err)
			}

			res, err := client.SchemaApply(cmd.Context(), &atlasexec.SchemaApplyParams{
				URL:         cfg.DB.BuildDSN(),
				To:          "file://" + schemaFile,
				DevURL:      devURL,
				DryRun:      dryRun,
				AutoApprove: true,
			})
			if err != nil {
				return fmt.Errorf("schema apply: %w", err)
			}

			verb := "applied"
			if dryRun {
				verb = "planned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d statements %s\n", len(res.Changes.Applied)+len(res.Changes.Pending), verb)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "migrations/001_initial_schema.sql", "Desired schema file")
	cmd.Flags().StringVar(&devURL, "dev-url", "docker://postgres/16/dev", "Atlas dev database used to compute the diff")
	cmd.Flags().StringVar(&atlasBin, "atlas", "atlas", "Path to the atlas binary")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")

	return cmd
}
