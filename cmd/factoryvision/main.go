package main

import "github.com/emiliopalmerini/factoryvision/internal/cli"

func main() {
	cli.Execute()
}
