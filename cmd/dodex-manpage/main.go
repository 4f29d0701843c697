package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/dodex/cmd/dodex"
	"github.com/arthur-debert/dodex/internal/version"
)

func main() {
	rootCmd := dodex.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DODEX",
		Section: "1",
		Source:  "dodex " + version.Version,
		Manual:  "dodex manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
