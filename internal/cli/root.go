// Package cli wires configuration, logging, the API client, and the
// view-models into the omics-console command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reslab-bio/omics-console/internal/api"
	"github.com/reslab-bio/omics-console/pkg/config"
	"github.com/reslab-bio/omics-console/pkg/logger"
)

// app carries the shared dependencies every command needs. Built once in the
// root PersistentPreRunE; the API client is created lazily because the mock
// server command never talks to a backend.
type app struct {
	cfg *config.Config
	log *zap.Logger

	client  *api.Client
	session *sessionJar
}

func (a *app) apiClient() (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	jar, err := newSessionJar(a.cfg.API.BaseURL, sessionFilePath())
	if err != nil {
		return nil, err
	}

	client, err := api.New(api.Params{
		BaseURL:          a.cfg.API.BaseURL,
		Timeout:          a.cfg.API.Timeout,
		Logger:           a.log,
		CatalogCacheTTL:  a.cfg.Catalog.CacheTTL,
		MaxSearchResults: a.cfg.Search.MaxResults,
		Jar:              jar,
	})
	if err != nil {
		return nil, err
	}

	a.client = client
	a.session = jar
	return client, nil
}

// persistSession flushes the cookie jar to disk. Called after every command
// that may have changed session state.
func (a *app) persistSession() {
	if a.session == nil {
		return
	}
	if err := a.session.Save(); err != nil {
		a.log.Warn("could not persist session", zap.Error(err))
	}
}

// NewRootCommand builds the full omics-console command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "omics-console",
		Short:         "Terminal client for the ResLab Omics Platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			log, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newProjectsCommand(a),
		newSamplesCommand(a),
		newUploadCommand(a),
		newQCCommand(a),
		newWizardCommand(a),
		newDashboardCommand(a),
		newMockServerCommand(a),
	)
	return root
}

// Execute runs the root command and reports failures on stderr.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
