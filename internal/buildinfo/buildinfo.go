// Package buildinfo exposes build metadata stamped in via -ldflags:
//
//	go build -ldflags "-X .../buildinfo.BuildVersion=v1.0.0 \
//	  -X .../buildinfo.BuildDate=2026-08-31 -X .../buildinfo.BuildCommit=abc123"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	BuildVersion = "N/A"
	BuildDate    = "N/A"
	BuildCommit  = "N/A"
)

// PrintBuildData writes the stamped build metadata to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", BuildVersion)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", BuildCommit)
}
