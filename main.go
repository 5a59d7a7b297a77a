package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "baffl: ", 0)
	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "compile":
		compileCommand(args, logger)
	case "check":
		checkCommand(args, logger)
	case "watch":
		watchCommand(args, logger)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}
