// Command happyplaces records where household items are left and reports
// on their whereabouts, wear and co-presence.
package main

import (
	"os"

	"github.com/roach88/happyplaces/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
