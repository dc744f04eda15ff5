// Command detecturl classifies Atlassian URLs from the command line.
// Usage: go run cmd/detecturl/main.go <url> [<url>...]
package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/docbridge/internal/urldetect"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: detecturl <url> [<url>...]")
		os.Exit(1)
	}

	for _, url := range os.Args[1:] {
		d := urldetect.Detect(url)
		switch {
		case d.Kind == urldetect.KindUnknown:
			fmt.Printf("%s\n  unknown\n", url)
		case d.BoardID != "":
			fmt.Printf("%s\n  %s %s board=%s\n", url, d.Kind, d.Identifier, d.BoardID)
		default:
			fmt.Printf("%s\n  %s %s\n", url, d.Kind, d.Identifier)
		}
	}
}
