package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/prhealth/internal/adapters/ingest"
	"github.com/okian/prhealth/internal/adapters/notify"
	repository "github.com/okian/prhealth/internal/adapters/repository"
	app "github.com/okian/prhealth/internal/app"
	"github.com/okian/prhealth/internal/seed"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats for command results.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

var errNoAccounts = errors.New("pass one or more account ids or --all")

func (c *cli) openStore(ctx context.Context) (*repository.SQLStore, error) {
	dsn, err := c.cfg.DSN()
	if err != nil {
		return nil, err
	}
	store, err := repository.Open(ctx, c.cfg.DBDriver, dsn,
		repository.WithQueryTimeout(time.Duration(c.cfg.QueryTimeoutMS)*time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return store, nil
}

func (c *cli) scoreCmd() *cobra.Command {
	var (
		all    bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "score [account-id...]",
		Short: "Compute health reports",
		Long: `Compute the four PR health sub-scores of the given accounts, or of every
active account with --all, and print them as JSON or YAML.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errNoAccounts
			}
			if output != outputJSON && output != outputYAML {
				return fmt.Errorf("unknown output %q; use json or yaml", output)
			}
			ctx := cmd.Context()

			// score never delivers summaries
			svc := app.New(c.cfg, app.WithSink(notify.NewLogSink()))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() { _ = svc.Stop(context.WithoutCancel(ctx)) }()

			var ids []string
			if !all {
				ids = args
			}
			reports, err := svc.ScoreAccounts(ctx, ids)
			if err != nil {
				return err
			}
			if len(args) == 1 && !all {
				return write(cmd.OutOrStdout(), output, reports[0])
			}
			return write(cmd.OutOrStdout(), output, reports)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "score every active account")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or yaml")
	return cmd
}

func (c *cli) seedCmd() *cobra.Command {
	cfg := seed.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}

			st, err := seed.Run(ctx, store, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d account(s), %d publication(s), %d relationship(s).\n",
				st.Accounts, st.Publications, st.Relationships)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Accounts, "accounts", cfg.Accounts, "number of accounts")
	cmd.Flags().IntVar(&cfg.PublicationsPerAccount, "publications", cfg.PublicationsPerAccount, "media room releases per account")
	cmd.Flags().IntVar(&cfg.RelationshipsPerRelease, "pickups", cfg.RelationshipsPerRelease, "maximum newswire pickups per release")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}

func (c *cli) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <account-id> <feed-url|file>",
		Short: "Load a media room RSS or Atom feed as publications",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}

			ing := ingest.New(store, ingest.WithUserAgent("prhealth/"+version))
			accountID, source := args[0], args[1]

			var res ingest.Result
			if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
				res, err = ing.IngestURL(ctx, accountID, source)
			} else {
				f, openErr := os.Open(source)
				if openErr != nil {
					return fmt.Errorf("opening feed: %w", openErr)
				}
				defer f.Close()
				res, err = ing.IngestReader(ctx, accountID, f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d of %d item(s) into channel %s.\n", res.Inserted, res.Items, res.ChannelID)
			return nil
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s).\n", store.Driver())
			return nil
		},
	}
}

// write renders v as indented JSON or as YAML with the JSON field names.
func write(w io.Writer, format string, v any) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
