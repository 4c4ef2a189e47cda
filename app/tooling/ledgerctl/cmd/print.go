package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// printCmd writes the details of every block in the chain to stdout.
var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the details of each block in the chain",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := newState()
		if err != nil {
			log.Fatal(err)
		}
		defer st.Shutdown()

		for _, block := range st.RetrieveChain() {
			fmt.Printf("Block %d:\n", block.Header.Number)
			fmt.Printf("  Hash: %s\n", block.Hash())
			fmt.Printf("  Previous Hash: %s\n", block.Header.PrevBlockHash)
			fmt.Printf("  Merkle Root: %s\n", block.Header.TransRoot)
			fmt.Printf("  Timestamp: %d\n", block.Header.TimeStamp)
			fmt.Printf("  Nonce: %d\n", block.Header.Nonce)
			for _, tx := range block.Trans.Values() {
				fmt.Printf("  Tx: %s\n", tx)
			}
			fmt.Println()
		}
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}
