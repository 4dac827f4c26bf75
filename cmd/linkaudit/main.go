// cmd/linkaudit/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unclebandit/lifecycle-messaging/internal/audit"
	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	"github.com/unclebandit/lifecycle-messaging/internal/config"
	"github.com/unclebandit/lifecycle-messaging/internal/db"
	"github.com/unclebandit/lifecycle-messaging/internal/model"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

var errAuditFailed = errors.New("link audit failed")

type options struct {
	BaseURL    string
	RoutesFile string
	DSN        string
	JSON       bool
}

func main() {
	_ = config.LoadDotEnv()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAuditFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetDefault("routes", "")
	v.SetDefault("json", false)

	rootCmd := &cobra.Command{
		Use:   "linkaudit",
		Short: "Check every lifecycle email link against the canonical host",
		Long: `linkaudit renders every onboarding, product and retention email against
the canonical base URL and fails when any link points at another host or at a route
the app does not serve.

	Configure by flag or environment:
APP_BASE_URL                                // example: https://app.bakeryhq.com
DATABASE_URL                                // optional, also audits the stored retention templates
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options{
				BaseURL:    v.GetString("base-url"),
				RoutesFile: v.GetString("routes"),
				DSN:        v.GetString("dsn"),
				JSON:       v.GetBool("json"),
			}
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.Flags()
	flags.String("base-url", "", "canonical app base URL (APP_BASE_URL)")
	flags.String("routes", "", "YAML file of allowed route prefixes (defaults to the built-in list)")
	flags.String("dsn", "", "Postgres DSN to include stored retention templates (DATABASE_URL)")
	flags.Bool("json", false, "write the report as JSON")

	_ = v.BindPFlags(flags)
	_ = v.BindEnv("base-url", "APP_BASE_URL")
	_ = v.BindEnv("dsn", "DATABASE_URL")

	return rootCmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if err := config.ValidateBaseURL(opts.BaseURL); err != nil {
		return err
	}

	routes, err := loadRoutes(opts.RoutesFile)
	if err != nil {
		return err
	}
	auditor, err := audit.NewAuditor(opts.BaseURL, routes)
	if err != nil {
		return err
	}

	retention := catalog.DefaultRetentionTemplates()
	if opts.DSN != "" {
		stored, err := storedTemplates(ctx, opts.DSN)
		if err != nil {
			return err
		}
		retention = append(retention, stored...)
	}

	report := auditor.Audit(retention)
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		report.WriteText(out)
	}

	if report.Failed() {
		return errAuditFailed
	}
	return nil
}

func loadRoutes(path string) (*audit.Routes, error) {
	if path == "" {
		return audit.DefaultRoutes()
	}
	return audit.LoadRoutes(path)
}

func storedTemplates(ctx context.Context, dsn string) ([]model.RetentionTemplate, error) {
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	repo := &repository.RetentionTemplateRepository{DB: conn}
	var out []model.RetentionTemplate
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		page, total, err := repo.ListTemplates(ctx, offset, pageSize, repository.TemplateFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list retention templates: %w", err)
		}
		for _, t := range page {
			out = append(out, *t)
		}
		if len(page) == 0 || offset+pageSize >= total {
			return out, nil
		}
	}
}
