package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	var clean bool
	switch command {
	case "tokens":
		clean, err = runTokens(args)
	case "links":
		clean, err = runLinks(args)
	case "audit":
		clean, err = runAudit(args)
	case "theme":
		clean, err = runTheme(args)
	case "watch":
		clean, err = runWatch(args)
	case "serve":
		clean, err = runServe(args)
	case "version":
		fmt.Printf("sitespec %s\n", version)
		return
	case "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "sitespec %s: %v\n", command, err)
		os.Exit(2)
	}
	if !clean {
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: sitespec <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  tokens     Rewrite page literals to token references")
	fmt.Println("  links      Apply the link graph: anchors, breadcrumbs, related blocks")
	fmt.Println("  audit      Report consistency findings without modifying pages")
	fmt.Println("  theme      Get, set, or list the active theme (theme get|set <name>|list)")
	fmt.Println("  watch      Re-run the audit whenever pages or sources change")
	fmt.Println("  serve      Start the MCP server on stdio")
	fmt.Println("  version    Print version")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Exit status is 0 when a run produces zero findings, 1 otherwise.")
}
