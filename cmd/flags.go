package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/tagezi/mlidb/internal/iostore"
	"github.com/tagezi/mlidb/pkg/config"
	"github.com/tagezi/mlidb/pkg/store"
	"github.com/tagezi/mlidb/pkg/taxonomy"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// openStore connects to the store from the loaded configuration. A SQLite
// store without a path lives in the data directory of the user.
func openStore(ctx context.Context) (store.Store, error) {
	sc := cfg.Store
	if sc.Driver != "postgres" && sc.Path == "" {
		sc.Path = config.StoreFilePath(cfg.HomeDir)
	}
	st, err := iostore.Open(ctx, sc)
	if err != nil {
		gn.PrintErrorMessage(err)
		return nil, err
	}
	return st, nil
}

// askYes prints a question and reads the answer from stdin.
func askYes(question string) (bool, error) {
	fmt.Printf("\n%s (yes/no): ", question)

	reader := bufio.NewReader(stdin)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		gn.Warn("Failed to read user input")
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

// confirmFunc returns a Confirm that asks the user about a name
// collision, or accepts every collision when yes is set.
func confirmFunc(yes bool) taxonomy.Confirm {
	if yes {
		return nil
	}
	return func(c taxonomy.Conflict) bool {
		gn.Warn("A taxon with the same name exists (id <em>%d</em>)", c.ExistingID)
		ok, err := askYes("Do you want to continue?")
		return err == nil && ok
	}
}

// optString returns the value of a string flag if the user set it.
func optString(cmd *cobra.Command, name string) (*string, bool) {
	if !cmd.Flags().Changed(name) {
		return nil, false
	}
	s, _ := cmd.Flags().GetString(name)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	return &s, true
}

// optInt returns the value of an int flag if the user set it. Zero means
// an empty value.
func optInt(cmd *cobra.Command, name string) (*int, bool) {
	if !cmd.Flags().Changed(name) {
		return nil, false
	}
	i, _ := cmd.Flags().GetInt(name)
	if i == 0 {
		return nil, true
	}
	return &i, true
}
