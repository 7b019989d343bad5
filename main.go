package main

import (
	"github.com/dotcommander/farol/cmd"
	"github.com/dotcommander/farol/internal/output"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	output.Version = version
	cmd.Execute()
}
