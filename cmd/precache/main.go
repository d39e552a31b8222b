// Command precache regenerates the precache list of the web client's
// service worker and writes precache-manifest.json next to it.
//
//	precache --root . --sw-path service_worker.js --out precache-manifest.json \
//	  --max-size 1000000 --scan-paths web,assets
//
// It exits with 0 on success, 2 when the service worker is missing (the
// manifest is still written) and 1 on any other error.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/precache"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx := context.Background()
	logger := logging.NewJSONLogger(stderr, slog.LevelInfo)

	opts, err := parseArgs(args, stderr)
	if err != nil {
		logger.Error(ctx, "invalid arguments", "error", err)
		return 1
	}

	if err := precache.Run(opts, stdout); err != nil {
		if errors.Is(err, precache.ErrServiceWorkerMissing) {
			return 2
		}
		logger.Error(ctx, "precache failed", "error", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (precache.Options, error) {
	opts := precache.Options{}
	fs := flag.NewFlagSet("precache", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var scan string
	fs.StringVar(&opts.Root, "root", ".", "project root to scan")
	fs.StringVar(&opts.SWPath, "sw-path", "service_worker.js", "service worker to update")
	fs.StringVar(&opts.Out, "out", "precache-manifest.json", "output manifest file")
	fs.Int64Var(&opts.MaxSize, "max-size", precache.DefaultMaxSize, "max file size in bytes to include")
	fs.StringVar(&scan, "scan-paths", strings.Join(precache.DefaultScanPaths, ","), "comma separated paths to scan, relative to root")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.ScanPaths = splitList(scan)
	opts.ScanPaths = append(opts.ScanPaths, fs.Args()...)
	return opts, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
