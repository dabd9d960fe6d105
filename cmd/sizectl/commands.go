package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/sleeveselector/internal/config"
	"example.com/sleeveselector/internal/reference"
	"example.com/sleeveselector/internal/sizing"
	"example.com/sleeveselector/internal/sleeve"
	catalogstore "example.com/sleeveselector/internal/sleeve/postgres"
)

func newRootCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "sizectl",
		Short:        "Sleeve selector reference and catalog tooling",
		SilenceUsage: true,
	}
	var referencePath string
	root.PersistentFlags().StringVar(&referencePath, "reference", cfg.ReferencePath, "reference document (YAML or JSON); empty uses the bundled tables")

	loadTables := func() (*reference.Set, error) {
		if referencePath == "" {
			return reference.LoadDefault()
		}
		return reference.Load(referencePath)
	}

	root.AddCommand(validateCmd(loadTables))
	root.AddCommand(resolveCmd(loadTables))
	root.AddCommand(importCatalogCmd(cfg, logger))
	return root
}

func validateCmd(loadTables func() (*reference.Set, error)) *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the reference document and optionally a catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := loadTables()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, table := range tables.Tables() {
				fmt.Fprintf(out, "table %s: %d entries, unit %s, tolerance %g\n",
					table.Name, len(table.Entries), table.Unit, table.Tolerance)
			}
			for _, overlap := range tables.Overlaps() {
				fmt.Fprintf(out, "warning: %s\n", overlap)
			}

			var source sleeve.Source = sleeve.EmbeddedSource{}
			if catalogPath != "" {
				source = sleeve.FileSource{Path: catalogPath}
			}
			catalog, err := sleeve.LoadCatalog(cmd.Context(), source)
			if err != nil {
				return err
			}
			if _, err := sleeve.NewSelector(catalog, tables); err != nil {
				return err
			}
			fmt.Fprintf(out, "catalog: %d products\n", catalog.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog JSON file; empty uses the bundled catalog")
	return cmd
}

func resolveCmd(loadTables func() (*reference.Set, error)) *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "resolve TABLE DIMENSION=VALUE...",
		Short: "Resolve measurements against a reference table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables()
			if err != nil {
				return err
			}
			resolver, err := tables.Resolver(args[0])
			if err != nil {
				return err
			}
			measurements, err := parseMeasurements(args[1:])
			if err != nil {
				return err
			}
			parsed, err := sizing.ParseUnit(unit)
			if err != nil {
				return err
			}

			result, err := resolver.ResolveIn(parsed, measurements)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "unit of the measurements (cm, mm, in); empty uses the table unit")
	return cmd
}

func importCatalogCmd(cfg config.Config, logger zerolog.Logger) *cobra.Command {
	var (
		catalogPath string
		dsn         string
	)
	cmd := &cobra.Command{
		Use:   "import-catalog",
		Short: "Replace the Postgres sleeve catalog with a JSON catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return fmt.Errorf("postgres url required (--postgres-url or CATALOG_POSTGRES_URL)")
			}
			ctx := cmd.Context()

			var source sleeve.Source = sleeve.EmbeddedSource{}
			if catalogPath != "" {
				source = sleeve.FileSource{Path: catalogPath}
			}
			catalog, err := sleeve.LoadCatalog(ctx, source)
			if err != nil {
				return err
			}

			pool, err := pgxpool.New(ctx, dsn)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			defer pool.Close()

			if err := catalogstore.NewRepository(pool).Import(ctx, catalog.Products()); err != nil {
				return err
			}
			logger.Info().Int("products", catalog.Len()).Msg("sleeve catalog imported")
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", cfg.CatalogPath, "catalog JSON file; empty uses the bundled catalog")
	cmd.Flags().StringVar(&dsn, "postgres-url", cfg.CatalogPostgresURL, "Postgres connection string")
	return cmd
}

func parseMeasurements(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("measurement %q must look like dimension=value", arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("measurement %q: %w", arg, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}
