package main

import (
	"github.com/diego-devita/stopweb/internal/cli"
)

func main() {
	cli.Execute()
}
