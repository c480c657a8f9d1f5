// The main package for the courtlistener scraper executable.
package main

import (
	"github.com/tactipus/courtlistener/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
