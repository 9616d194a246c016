// Package main provides the jobquery binary: validate USAJobs search
// criteria, inspect the parameter schema, refresh code lists and serve the
// validation API.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/i18n"
	"github.com/herpritts/jobquery/internal/config"
	"github.com/herpritts/jobquery/internal/logging"
	"github.com/herpritts/jobquery/schema"
	"github.com/herpritts/jobquery/source"
	"github.com/herpritts/jobquery/usajobs"
)

const appName = "jobquery"

// errRejected signals that validation rejected at least one criterion; the
// report has already been printed.
var errRejected = errors.New("criteria rejected")

func main() {
	if err := rootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	language   string
}

func rootCmd(out, errOut io.Writer) *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   appName,
		Short: "USAJobs search-parameter validation",
		Long: `jobquery validates job-search criteria against the USAJobs search-parameter
schema before a search request is sent.

It provides:
- field listing with possible values
- validation reports and encoded query strings
- code-list inspection and refresh from data.usajobs.gov
- an HTTP validation API with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "Environment file to load")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.language, "lang", "", "Message language (en, es)")

	cmd.AddCommand(
		fieldsCmd(g),
		validateCmd(g),
		encodeCmd(g),
		codesCmd(g),
		serveCmd(g),
	)
	return cmd
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.language != "" {
		cfg.Language = g.language
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return nil, err
	}
	i18n.SetLanguage(cfg.Language)
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) registry() (*jobquery.Registry, error) {
	if a.cfg.Schema.Path == "" {
		return usajobs.Registry()
	}
	reg, diag, err := schema.Load(a.cfg.Schema.Path, schema.Options{Strict: a.cfg.Schema.Strict})
	for _, w := range diag.Warnings() {
		a.log.Warn().Str("schema", a.cfg.Schema.Path).Msg(w)
	}
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("schema", a.cfg.Schema.Path).Int("fields", reg.Len()).Msg("Loaded schema")
	return reg, nil
}

func (a *app) codeSource() jobquery.CodeListSource {
	var src jobquery.CodeListSource = source.FS(usajobs.CodeLists())
	if a.cfg.CodeLists.Dir != "" {
		src = source.Dir(a.cfg.CodeLists.Dir)
	}
	if a.cfg.CodeLists.SkipDisabled {
		src = source.SkipDisabled(src)
	}
	return src
}

func (a *app) engine(obs jobquery.Observer) (*jobquery.Engine, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	return jobquery.New(reg, a.codeSource(), jobquery.Options{
		LoadTimeout: a.cfg.CodeLists.LoadTimeout,
		Logger:      &a.log,
		Observer:    obs,
	}), nil
}
