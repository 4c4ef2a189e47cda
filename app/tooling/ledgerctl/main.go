// This program provides administration tooling that operates directly on
// the block storage without running a node.
package main

import "github.com/hashledger/ledger/app/tooling/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
