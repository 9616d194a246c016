package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/codec"
	"github.com/herpritts/jobquery/httpapi"
	"github.com/herpritts/jobquery/metrics"
	"github.com/herpritts/jobquery/source"
)

// parseCriteria turns key=value arguments into criteria, keeping their order.
// The value may be empty or contain further '=' characters.
func parseCriteria(args []string) ([]jobquery.Criterion, error) {
	out := make([]jobquery.Criterion, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		out = append(out, jobquery.Criterion{Field: k, Value: v})
	}
	return out, nil
}

func fieldsCmd(g *globalFlags) *cobra.Command {
	var withValues bool
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the search parameters in declaration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			e, err := a.engine(nil)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tKIND\tTYPE\tCONSTRAINT")
			for _, d := range e.Registry().Fields() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Key, d.Kind(), d.Type, constraint(d))
				if !withValues {
					continue
				}
				values, err := e.PossibleValues(cmd.Context(), d.Key)
				if err != nil {
					return err
				}
				if len(values) > 0 {
					fmt.Fprintf(tw, "\t\t\t%s\n", strings.Join(values, ", "))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&withValues, "values", false, "Also list possible values (resolves code lists)")
	return cmd
}

func constraint(d jobquery.FieldDescriptor) string {
	switch d.Kind() {
	case jobquery.KindEnum:
		return fmt.Sprintf("one of %d values", len(d.Enum))
	case jobquery.KindCodeList:
		return "code list " + d.CodeList.String()
	case jobquery.KindBoolean:
		t, f := d.BoolLiterals()
		return t + "/" + f
	case jobquery.KindInteger:
		switch {
		case d.Min != nil && d.Max != nil:
			return fmt.Sprintf("%d..%d", *d.Min, *d.Max)
		case d.Min != nil:
			return fmt.Sprintf(">= %d", *d.Min)
		case d.Max != nil:
			return fmt.Sprintf("<= %d", *d.Max)
		}
	}
	return ""
}

func validateCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate key=value...",
		Short: "Validate search criteria and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseCriteria(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			e, err := a.engine(nil)
			if err != nil {
				return err
			}
			q := e.Build(cmd.Context(), criteria)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := j.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(httpapi.ValidateResponse{Report: q.Report(), Query: codec.QueryString(codec.Encode(q))}); err != nil {
					return err
				}
			} else {
				for _, k := range q.Keys() {
					for _, v := range q.All(k) {
						fmt.Fprintf(out, "ok       %s=%s\n", k, v)
					}
				}
				for _, it := range q.Issues() {
					fmt.Fprintf(out, "rejected %s=%q: %s (%s)\n", it.Field, it.Value, it.Message, it.Code)
				}
			}
			if !q.OK() {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func encodeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "encode key=value...",
		Short: "Print the search API query string for valid criteria",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseCriteria(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			e, err := a.engine(nil)
			if err != nil {
				return err
			}
			q := e.Build(cmd.Context(), criteria)
			if err := q.Err(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), codec.QueryString(codec.Encode(q)))
			return nil
		},
	}
}

func codesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Inspect and refresh code lists",
	}
	cmd.AddCommand(codesShowCmd(g), codesUpdateCmd(g))
	return cmd
}

func codesShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <source> <field>",
		Short: "Print the codes of one code list field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			r := jobquery.NewResolver(a.codeSource(),
				jobquery.WithLoadTimeout(a.cfg.CodeLists.LoadTimeout),
				jobquery.WithResolverLogger(a.log),
			)
			set, err := r.Resolve(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			for _, v := range set.Values() {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func codesUpdateCmd(g *globalFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download the configured code lists from the code-list API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.CodeLists.Dir
			}
			if dir == "" {
				return errors.New("no code-list directory: pass --dir or set codelists.dir")
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create code-list directory: %w", err)
			}
			src := source.NewHTTP(source.HTTPConfig{
				BaseURL:   a.cfg.CodeLists.BaseURL,
				Endpoints: a.cfg.CodeLists.Endpoints,
				RetryMax:  a.cfg.CodeLists.RetryMax,
				Timeout:   a.cfg.CodeLists.LoadTimeout,
				UserAgent: a.cfg.CodeLists.UserAgent,
				Logger:    a.log,
			})
			return updateCodes(cmd.Context(), a, src, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default: codelists.dir)")
	return cmd
}

// updateCodes fetches every endpoint and writes the documents that decode as
// code lists. Failures are logged and counted; the remaining lists are still
// fetched.
func updateCodes(ctx context.Context, a *app, src *source.HTTPSource, dir string) error {
	failed := 0
	for _, name := range src.Names() {
		body, err := src.Fetch(ctx, name)
		if err == nil {
			_, err = source.DecodeEntries(body)
		}
		if err == nil {
			err = os.WriteFile(filepath.Join(dir, name), body, 0o644)
		}
		if err != nil {
			failed++
			a.log.Error().Err(err).Str("codelist", name).Msg("Failed to update code list")
			continue
		}
		a.log.Info().Str("codelist", name).Int("bytes", len(body)).Msg("Updated code list")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d code lists failed to update", failed, len(src.Names()))
	}
	return nil
}

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			var obs jobquery.Observer
			opts := []httpapi.Option{httpapi.WithLogger(a.log)}
			if a.cfg.Server.Metrics {
				m, err := metrics.New()
				if err != nil {
					return err
				}
				obs = m
				opts = append(opts, httpapi.WithMetrics(m.Handler()))
			}
			e, err := a.engine(obs)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := e.Preload(ctx); err != nil {
				return fmt.Errorf("code lists unavailable: %w", err)
			}

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           httpapi.New(e, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Msg("Serving validation API")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.log.Info().Msg("Shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
	return cmd
}
