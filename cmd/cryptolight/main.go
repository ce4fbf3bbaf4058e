// Command cryptolight generates a symmetric key and encrypts or decrypts data
// with a lightweight block cipher in CBC mode.
package main

import (
	"os"

	"github.com/rbaliyan/cryptolight/cmd/cryptolight/internal/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
