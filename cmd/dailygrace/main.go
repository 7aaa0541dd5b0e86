package main

import (
	"fmt"
	"os"

	"github.com/dailygrace/dailygrace/internal/client/cli"
)

func main() {
	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
