package main

import (
	"os"

	"github.com/GlebRadaev/linkmarket/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
