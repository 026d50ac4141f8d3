package main

import (
	"fmt"
	"os"

	"github.com/rony4d/go-sereal/cmd/srl/inspector"
)

func main() {
	if err := inspector.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
