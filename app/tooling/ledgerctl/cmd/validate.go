package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// validateCmd re-verifies the whole chain from the genesis block forward.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Re-verify every hash and link in the stored chain",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := newState()
		if err != nil {
			log.Fatal(err)
		}
		defer st.Shutdown()

		if err := st.ValidateChain(); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("chain is valid: %d blocks\n", len(st.RetrieveChain()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
