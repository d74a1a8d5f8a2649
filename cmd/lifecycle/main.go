package main

import (
	"context"
	"fmt"
	"os"

	"github.com/francoispqt/gojay"
	"github.com/spf13/cobra"
	"github.com/viant/lifecycle/app"
	"github.com/viant/lifecycle/catalog"
	"github.com/viant/lifecycle/config"
)

var (
	version   = "dev"
	configURL string
)

var rootCmd = &cobra.Command{
	Use:     "lifecycle",
	Short:   "Object creation and lifecycle runtime",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalogue endpoint until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configURL == "" {
			return fmt.Errorf("--config was empty")
		}
		return app.RunApp(configURL)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run every catalogue use case",
	RunE: func(cmd *cobra.Command, args []string) error {
		aCatalog, err := newCatalog(cmd)
		if err != nil {
			return err
		}
		defer aCatalog.Close()
		return aCatalog.Demo(cmd.Context())
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print registered selectors as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		aCatalog, err := newCatalog(cmd)
		if err != nil {
			return err
		}
		if err = aCatalog.WarmUp(cmd.Context()); err != nil {
			return err
		}
		data, err := gojay.MarshalJSONObject(aCatalog.Snapshot())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func newCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	cfg := &config.Config{}
	if configURL != "" {
		var err error
		if cfg, err = config.NewConfigFromURL(cmd.Context(), configURL); err != nil {
			return nil, err
		}
	} else {
		cfg.Init()
	}
	return catalog.New(cfg, catalog.WithWriter(cmd.OutOrStdout()))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "config URL")
	rootCmd.AddCommand(serveCmd, demoCmd, catalogCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
