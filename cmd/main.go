package main

import (
	"os"

	"github.com/windprak/steuerllm-benchmark/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
