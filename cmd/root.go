/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tagezi/mlidb/internal/iofs"
	"github.com/tagezi/mlidb/internal/iologger"
	app "github.com/tagezi/mlidb/pkg"
	"github.com/tagezi/mlidb/pkg/config"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the root command with all subcommands attached.
// Every call builds a new tree, so tests can run commands independently.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "mlidb",
		Short:   "Curate a lichen taxonomy database",
		Long: `mlidb keeps a local database of lichen taxa consistent and
reconciles it with a GBIF-like species API.

Commands:
  create     create the database schema and seed vocabularies
  migrate    update the schema of an existing database
  add        add a taxon from a label like "(Genus) Cladonia, P.Browne"
  synonyms   add synonyms to an accepted taxon
  edit       change fields of a taxon
  move       attach a taxon to another parent
  info       show a taxon with its synonyms, children and links
  dedup      remove duplicated taxa
  reconcile  import children and synonyms from the species API
  inat       import iNaturalist ids from a CSV file
  optimize   refresh derived data and compact the database
  vocab      manage substrates and colors

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (MLIDB_*)
  3. .env file in the config directory
  4. Config file (~/.config/mlidb/config.yaml)
  5. Built-in defaults

Environment variables use underscores for nesting:
  MLIDB_STORE_DRIVER          sqlite or postgres
  MLIDB_STORE_PATH            SQLite database file
  MLIDB_RECONCILE_DELAY_MS    pause between API requests
  MLIDB_LOG_LEVEL             debug, info, warn or error`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "mlidb version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for mlidb")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getAddCmd(),
		getSynonymsCmd(),
		getEditCmd(),
		getMoveCmd(),
		getInfoCmd(),
		getDedupCmd(),
		getReconcileCmd(),
		getINatCmd(),
		getOptimizeCmd(),
		getVocabCmd(),
	)

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureWhitelistFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	envPath := config.EnvFilePath(homeDir)
	if _, err = os.Stat(envPath); err == nil {
		if err = godotenv.Load(envPath); err != nil {
			err = iofs.ReadFileError(envPath, err)
			gn.PrintErrorMessage(err)
			return err
		}
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

func runRoot(cmd *cobra.Command, args []string) error {
	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions().
	v.SetEnvPrefix("MLIDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Store configuration
	v.BindEnv("store.driver", "MLIDB_STORE_DRIVER")
	v.BindEnv("store.path", "MLIDB_STORE_PATH")
	v.BindEnv("store.host", "MLIDB_STORE_HOST")
	v.BindEnv("store.port", "MLIDB_STORE_PORT")
	v.BindEnv("store.user", "MLIDB_STORE_USER")
	v.BindEnv("store.password", "MLIDB_STORE_PASSWORD")
	v.BindEnv("store.database", "MLIDB_STORE_DATABASE")
	v.BindEnv("store.ssl_mode", "MLIDB_STORE_SSL_MODE")

	// Reconciliation configuration
	v.BindEnv("reconcile.api_url", "MLIDB_RECONCILE_API_URL")
	v.BindEnv("reconcile.delay_ms", "MLIDB_RECONCILE_DELAY_MS")
	v.BindEnv("reconcile.page_size", "MLIDB_RECONCILE_PAGE_SIZE")
	v.BindEnv("reconcile.gbif_source_id", "MLIDB_RECONCILE_GBIF_SOURCE_ID")
	v.BindEnv("reconcile.timeout_sec", "MLIDB_RECONCILE_TIMEOUT_SEC")

	// Import configuration
	v.BindEnv("import.inat_source_id", "MLIDB_IMPORT_INAT_SOURCE_ID")
	v.BindEnv("import.delimiter", "MLIDB_IMPORT_DELIMITER")

	// Log configuration
	v.BindEnv("log.level", "MLIDB_LOG_LEVEL")
	v.BindEnv("log.format", "MLIDB_LOG_FORMAT")
	v.BindEnv("log.destination", "MLIDB_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "MLIDB_JOBS_NUMBER")

	v.AutomaticEnv()
}
