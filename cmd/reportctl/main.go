// Package main is the entry point for the reportctl CLI tool.
package main

import (
	"go-broker/internal/cli"
)

func main() {
	cli.Execute()
}
