// Package buildinfo holds version metadata injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/fe/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Commit  = "N/A"
	Date    = "N/A"
)

// Print writes the build metadata, one field per line.
func Print(w io.Writer, program string) {
	fmt.Fprintf(w, "%s\nBuild version: %s\nBuild date: %s\nBuild commit: %s\n", program, Version, Date, Commit)
}
