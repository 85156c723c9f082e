// Command datagen generates atomic chess training data through
// self-play, and rescores existing datasets.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
)

var errColor = color.New(color.FgRed, color.Bold)

func fail(format string, args ...interface{}) {
	errColor.Fprintf(os.Stderr, "error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func usage() {
	fmt.Println(`Usage:
  datagen [gen] --out PATH --samples N [options]
  datagen rescore --in PATH --out PATH [options]

Run "datagen gen -h" or "datagen rescore -h" for the full option list.`)
}

func main() {
	args := os.Args[1:]

	// The gen subcommand is the default.
	cmd := "gen"
	if len(args) > 0 {
		switch args[0] {
		case "gen", "rescore":
			cmd = args[0]
			args = args[1:]
		case "--help", "-h":
			usage()
			return
		}
	}

	switch cmd {
	case "gen":
		runGen(args)
	case "rescore":
		runRescore(args)
	}
}

// stringList implements a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// newFlagSet creates a FlagSet that exits 2 on bad usage and 0 on -h.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}
