////////////////////////////////////////////////////////////////////////////////
// Okinoko Gallery: curated exhibitions with staked votes and minted rewards
// created by tibfox 2025-09-03
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"os"

	"okinoko_gallery/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
