// Package workdir finds the directory that owns .modalkit, so commands run
// from a subdirectory or a git worktree share one config and store.
package workdir

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// RootFile redirects a directory to another project root.
	RootFile = ".modalkit-root"
	dataDir  = ".modalkit"
)

// ResolveBaseDir returns the project root for baseDir:
//  1. the target of a .modalkit-root file in baseDir,
//  2. baseDir itself if it has a .modalkit directory,
//  3. the same two checks at the git top level.
//
// Otherwise baseDir is returned unchanged.
func ResolveBaseDir(baseDir string) string {
	if baseDir == "" {
		return baseDir
	}
	baseDir = filepath.Clean(baseDir)

	if root, ok := resolveIn(baseDir); ok {
		return root
	}
	top, err := gitTopLevel(baseDir)
	if err != nil || top == "" {
		return baseDir
	}
	if root, ok := resolveIn(filepath.Clean(top)); ok {
		return root
	}
	return baseDir
}

func resolveIn(dir string) (string, bool) {
	if target, ok := readRootFile(dir); ok {
		return target, true
	}
	if fi, err := os.Stat(filepath.Join(dir, dataDir)); err == nil && fi.IsDir() {
		return dir, true
	}
	return "", false
}

func readRootFile(dir string) (string, bool) {
	content, err := os.ReadFile(filepath.Join(dir, RootFile))
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return "", false
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), true
}

func gitTopLevel(dir string) (string, error) {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
