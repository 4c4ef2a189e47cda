package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	from  string
	to    string
	value uint64
)

// addCmd mines a new block holding a single transaction.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Mine a block holding the specified transaction",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := newState()
		if err != nil {
			log.Fatal(err)
		}
		defer st.Shutdown()

		tx, err := database.NewTx(from, to, value)
		if err != nil {
			log.Fatal(err)
		}

		if err := st.SubmitTransaction(tx); err != nil {
			log.Fatal(err)
		}

		block, err := st.MineNewBlock(context.Background())
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("mined block %d: %s\n", block.Header.Number, block.Hash())
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&from, "from", "f", "", "Account sending the value.")
	addCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the value.")
	addCmd.Flags().Uint64VarP(&value, "value", "u", 0, "Value to send.")
	addCmd.MarkFlagRequired("from")
	addCmd.MarkFlagRequired("to")
}
