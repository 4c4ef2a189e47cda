// Package cmd contains the ledgerctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/hashledger/ledger/foundation/blockchain/database/storage"
	"github.com/hashledger/ledger/foundation/blockchain/genesis"
	"github.com/hashledger/ledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

var (
	genesisPath string
	dbPath      string
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db-path", "d", "zblock/blocks", "Path to the directory with block files.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print mining and validation events.")
}

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administer the ledger block storage directly",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newState loads the genesis file and the chain from disk into a state
// value ready for use. The stored chain is validated as part of the load.
func newState() (*state.State, error) {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load genesis file: %w", err)
	}

	strg, err := storage.NewDisk(dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to access block storage: %w", err)
	}

	var ev state.EventHandler
	if verbose {
		ev = func(v string, args ...any) {
			fmt.Printf(v+"\n", args...)
		}
	}

	return state.New(state.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
	})
}
