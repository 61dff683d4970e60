package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=...";
// it defaults to "dev" for local builds.
var version = "dev"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print solver build and version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("poker-solver %s\n", version)
		fmt.Printf("go runtime: %s\n", runtime.Version())
		fmt.Printf("os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	},
}
