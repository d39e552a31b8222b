// Package precache builds the list of static files the web client's
// service worker caches on install, records it in a JSON manifest and
// rewrites the PRECACHE_URLS array of the service worker in place.
package precache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mindfulplus/mindful/internal/filex"
)

const (
	DefaultMaxSize = 1_000_000
	backupLayout   = "20060102150405"
	cacheNameLine  = "const CACHE_NAME = `mindful-${CACHE_VERSION}`;"
)

var (
	DefaultScanPaths = []string{"web", "assets"}

	excludeExt = map[string]struct{}{
		".map": {}, ".psd": {}, ".zip": {}, ".exe": {}, ".dll": {},
		".pyc": {}, ".class": {}, ".so": {}, ".jar": {}, ".log": {},
	}
	excludeDirs = map[string]struct{}{
		"node_modules": {}, ".git": {}, "build": {}, "__pycache__": {},
	}
	rootFiles = []string{"index.html", "offline.html", "manifest.json", "web/index.html", "web/offline.html"}

	precacheRe = regexp.MustCompile(`const\s+PRECACHE_URLS\s*=\s*\[[\s\S]*?\];`)
)

var (
	// ErrServiceWorkerMissing is returned by Run after the manifest was
	// written when there is no service worker to update.
	ErrServiceWorkerMissing = errors.New("service worker not found")
	ErrNoInsertionPoint     = errors.New("could not find PRECACHE_URLS placeholder or insertion point in service worker")
)

type Options struct {
	Root      string
	SWPath    string
	Out       string
	MaxSize   int64
	ScanPaths []string
	Now       func() time.Time
}

// Manifest is the record written next to the service worker.
type Manifest struct {
	Precache    []string `json:"precache"`
	GeneratedAt int64    `json:"generated_at"`
}

type scanner struct {
	root    string
	maxSize int64
}

func (s scanner) excluded(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if _, ok := excludeDirs[part]; ok {
			return true
		}
	}
	if _, ok := excludeExt[strings.ToLower(filepath.Ext(path))]; ok {
		return true
	}
	fi, err := os.Stat(path)
	if err != nil {
		return true
	}
	return fi.Size() > s.maxSize
}

func (s scanner) url(path string) string {
	rel, _ := filepath.Rel(s.root, path)
	return "/" + filepath.ToSlash(rel)
}

// Gather walks scanPaths under root and returns the sorted site-relative
// URLs of every file worth precaching, plus the well-known root pages that
// exist and "/".
func Gather(root string, scanPaths []string, maxSize int64) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	s := scanner{root: root, maxSize: maxSize}
	urls := map[string]struct{}{"/": {}}

	for _, rel := range scanPaths {
		dir := filepath.Join(root, filepath.FromSlash(rel))
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if _, skip := excludeDirs[d.Name()]; skip && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if !s.excluded(path) {
				urls[s.url(path)] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", rel, err)
		}
	}

	for _, r := range rootFiles {
		full := filepath.Join(root, filepath.FromSlash(r))
		if _, err := os.Stat(full); err == nil && !s.excluded(full) {
			urls[s.url(full)] = struct{}{}
		}
	}

	out := make([]string, 0, len(urls))
	for u := range urls {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// WriteManifest writes urls as an indented JSON manifest.
func WriteManifest(path string, urls []string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Manifest{Precache: urls, GeneratedAt: now.Unix()}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ArrayLiteral is the JavaScript declaration of urls.
func ArrayLiteral(urls []string) string {
	var b strings.Builder
	b.WriteString("const PRECACHE_URLS = [\n")
	for i, u := range urls {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("\t'" + u + "',")
	}
	b.WriteString("\n];")
	return b.String()
}

// Inject replaces every PRECACHE_URLS declaration in script with urls.
// Scripts without one get it right after the CACHE_NAME declaration.
func Inject(script string, urls []string) (string, error) {
	arr := ArrayLiteral(urls)
	if precacheRe.MatchString(script) {
		return precacheRe.ReplaceAllLiteralString(script, arr), nil
	}
	if strings.Contains(script, cacheNameLine) {
		return strings.ReplaceAll(script, cacheNameLine, cacheNameLine+"\n\n"+arr), nil
	}
	return "", ErrNoInsertionPoint
}

// BackupPath is where the original service worker is kept.
func BackupPath(swPath string, now time.Time) string {
	return swPath + ".bak." + now.Format(backupLayout)
}

// UpdateServiceWorker rewrites the script at swPath with urls after
// copying the original to BackupPath. It returns the backup path.
func UpdateServiceWorker(swPath string, urls []string, now time.Time) (string, error) {
	raw, err := os.ReadFile(swPath)
	if err != nil {
		return "", err
	}
	updated, err := Inject(string(raw), urls)
	if err != nil {
		return "", err
	}
	bak := BackupPath(swPath, now)
	if err := filex.CopyFile(swPath, bak); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	fi, err := os.Stat(swPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(swPath, []byte(updated), fi.Mode().Perm()); err != nil {
		return "", err
	}
	return bak, nil
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// Run gathers the files, writes the manifest and updates the service
// worker, reporting progress to w. The manifest is written even when the
// service worker is missing, in which case ErrServiceWorkerMissing is
// returned.
func Run(opts Options, w io.Writer) error {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.ScanPaths == nil {
		opts.ScanPaths = DefaultScanPaths
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return err
	}
	swPath := resolve(root, opts.SWPath)

	fmt.Fprintln(w, "Scanning", root)
	urls, err := Gather(root, opts.ScanPaths, opts.MaxSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Found %d candidate files\n", len(urls))

	manifest := resolve(root, opts.Out)
	if err := WriteManifest(manifest, urls, opts.Now()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Fprintln(w, "Wrote manifest to", manifest)

	if !filex.Exists(swPath) {
		fmt.Fprintln(w, "Service worker not found at", swPath)
		return fmt.Errorf("%w: %s", ErrServiceWorkerMissing, swPath)
	}

	bak, err := UpdateServiceWorker(swPath, urls, opts.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Backed up original service worker to", bak)
	fmt.Fprintln(w, "Updated", swPath)
	return nil
}
