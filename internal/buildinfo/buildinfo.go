// Package buildinfo reports the version data stamped in at link time:
//
//	go build -ldflags "-X github.com/mindfulplus/mindful/internal/buildinfo.Version=1.2.0 \
//	  -X github.com/mindfulplus/mindful/internal/buildinfo.Date=$(date -u +%F) \
//	  -X github.com/mindfulplus/mindful/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version = "N/A"
	Date    = "N/A"
	Commit  = "N/A"
)

// PrintBuildData writes the version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", orNA(Date))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(Commit))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
