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
	"context"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/ioschema"
	"github.com/tagezi/mlidb/pkg/lifecycle"
)

// getCreateCmd returns the create command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getCreateCmd() *cobra.Command {
	var forceCreate bool

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create database schema",
		Long: `Create the mlidb database schema from scratch.

This command:
  1. Opens the store (SQLite by default, PostgreSQL if configured)
  2. Checks for existing tables and prompts for confirmation
  3. Creates all tables using GORM AutoMigrate
  4. Sets "C" collation on name columns (PostgreSQL only)
  5. Seeds ranks, statuses and data sources

Use --force to skip confirmation and drop existing tables.

Examples:
  mlidb create
  mlidb create --force
  mlidb create -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, forceCreate)
		},
	}

	createCmd.Flags().BoolVarP(&forceCreate, "force", "f",
		false, "drop existing tables without confirmation")

	return createCmd
}

func runCreate(
	_ *cobra.Command,
	_ []string,
	force bool,
) error {
	ctx := context.Background()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sm := ioschema.NewManager(st)
	ok, err := dropExisting(ctx, sm, force)
	if err != nil || !ok {
		return err
	}

	gn.Info("Creating schema using GORM AutoMigrate...")
	if err = sm.Create(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("\nDatabase schema creation complete!")
	gn.Info("\nNext steps:")
	gn.Info("  - Run 'mlidb add' to add higher taxa")
	gn.Info("  - Run 'mlidb reconcile' to import names from the species API")

	return nil
}

// dropExisting removes existing tables after confirmation. It returns
// false if the user declined.
func dropExisting(
	ctx context.Context,
	sm lifecycle.SchemaManager,
	force bool,
) (bool, error) {
	hasTables, err := sm.HasTables(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return false, err
	}
	if !hasTables {
		return true, nil
	}

	if force {
		gn.Info("Dropping all existing tables (--force enabled)...")
	} else {
		gn.Warn("\nWarning: Database contains existing tables.")
		gn.Warn("Creating schema will drop ALL existing tables and data.")
		ok, err := askYes("Do you want to continue?")
		if err != nil {
			return false, err
		}
		if !ok {
			gn.Info("Aborted. No changes made.")
			return false, nil
		}
		gn.Info("Dropping all existing tables...")
	}

	if err = sm.DropAllTables(ctx); err != nil {
		gn.PrintErrorMessage(err)
		return false, err
	}
	gn.Info("All tables dropped")
	return true, nil
}
