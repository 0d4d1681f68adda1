// Package derived locates Xcode DerivedData build artifacts for an app.
//
// Xcode writes one directory per project into the DerivedData base, named
// after the project plus a hash suffix (MyApp-abcdefghijklmn). The base is
// ~/Library/Developer/Xcode/DerivedData unless the user picked a custom
// location in Xcode's preferences.
package derived

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/StinkyLord/xctools/internal/logger"
)

// DefaultRelativePath is the DerivedData base relative to the home directory.
var DefaultRelativePath = filepath.Join("Library", "Developer", "Xcode", "DerivedData")

var (
	// ErrNoArtifactsFound is returned when no <app>-* directory exists.
	ErrNoArtifactsFound = errors.New("could not find any DerivedData for project, make sure to build at least once")

	// ErrHomeDirectoryUnavailable is returned when no override is configured
	// and the home directory cannot be resolved.
	ErrHomeDirectoryUnavailable = errors.New("failed to load home directory")

	// ErrSearch wraps I/O failures while listing the DerivedData base.
	ErrSearch = errors.New("failed to search through derived data")

	// ErrEmptyAppName is returned by Locate for a blank app name.
	ErrEmptyAppName = errors.New("app name must not be empty")
)

// Locator finds the newest DerivedData directory of an app.
type Locator struct {
	Fs          afero.Fs
	Preferences PreferenceSource
	HomeDir     func() (string, error)
}

// NewLocator returns a Locator using the process home directory.
func NewLocator(fsys afero.Fs, prefs PreferenceSource) *Locator {
	return &Locator{
		Fs:          fsys,
		Preferences: prefs,
		HomeDir:     os.UserHomeDir,
	}
}

// Base resolves the DerivedData base directory.
func (l *Locator) Base(ctx context.Context) (string, error) {
	if l.Preferences != nil {
		if loc := l.Preferences.CustomDerivedDataLocation(ctx); loc != "" {
			return loc, nil
		}
	}

	homeDir := l.HomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}
	home, err := homeDir()
	if err != nil || home == "" {
		if err == nil {
			err = errors.New("empty home directory")
		}
		return "", fmt.Errorf("%w: %w", ErrHomeDirectoryUnavailable, err)
	}
	return filepath.Join(home, DefaultRelativePath), nil
}

// candidate is one <app>-* directory with its modification time.
type candidate struct {
	path    string
	modTime time.Time
}

// Locate returns the most recently modified <appName>-* directory directly
// under the DerivedData base. Non-directories and entries whose metadata
// cannot be read are ignored. Equal timestamps keep directory listing order,
// which afero sorts by name.
func (l *Locator) Locate(ctx context.Context, appName string) (string, error) {
	if strings.TrimSpace(appName) == "" {
		return "", ErrEmptyAppName
	}

	base, err := l.Base(ctx)
	if err != nil {
		return "", err
	}
	log := logger.FromContext(ctx)
	log.Debug("searching DerivedData", "base", base, "app", appName)

	entries, err := afero.ReadDir(l.Fs, base)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrSearch, err)
	}

	prefix := appName + "-"
	var best *candidate
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(base, entry.Name())

		// Stat follows symlinks, matching what Xcode itself accepts.
		info, err := l.Fs.Stat(path)
		if err != nil {
			log.Debug("skipping unreadable DerivedData entry", "path", path, "err", err)
			continue
		}
		if !info.IsDir() {
			continue
		}

		c := candidate{path: path, modTime: info.ModTime()}
		if best == nil || c.modTime.After(best.modTime) {
			best = &c
		}
	}

	if best == nil {
		return "", fmt.Errorf("%w (no %s* directory in %s)", ErrNoArtifactsFound, prefix, base)
	}
	log.Debug("using DerivedData", "path", best.path, "modified", best.modTime)
	return best.path, nil
}
