// Package main is the entry point for the corpusgen CLI.
package main

import "corpusgen.dev/pkg/corpusgen/cmd"

func main() {
	cmd.Execute()
}
