package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dodex/cmd/dodex"
	"github.com/arthur-debert/dodex/pkg/style"
)

func main() {
	rootCmd := dodex.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(dodex.ExitCode(err))
	}
}
