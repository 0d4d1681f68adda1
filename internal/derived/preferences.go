package derived

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"howett.net/plist"

	"github.com/StinkyLord/xctools/internal/logger"
	"github.com/StinkyLord/xctools/internal/shell"
)

const (
	xcodeDomain       = "com.apple.dt.Xcode"
	customLocationKey = "IDECustomDerivedDataLocation"
)

// PreferenceSource reports the user-configured DerivedData location.
// An empty string means "not configured"; lookup failures are reported the
// same way because a missing preference is the common case.
type PreferenceSource interface {
	CustomDerivedDataLocation(ctx context.Context) string
}

// StaticPreference is a fixed location, typically from --derived-data-path.
type StaticPreference string

func (p StaticPreference) CustomDerivedDataLocation(context.Context) string {
	return strings.TrimSpace(string(p))
}

// DefaultsPreference asks the macOS preference system via
// `defaults read com.apple.dt.Xcode IDECustomDerivedDataLocation`.
type DefaultsPreference struct {
	Runner shell.Runner
}

func (p *DefaultsPreference) CustomDerivedDataLocation(ctx context.Context) string {
	out, err := p.Runner.Run(ctx, "defaults", "read", xcodeDomain, customLocationKey)
	if err != nil {
		logger.FromContext(ctx).Debug("defaults lookup failed", "key", customLocationKey, "err", err)
		return ""
	}
	return strings.TrimSpace(string(out))
}

// PlistPreference reads Xcode's preference file directly. It covers hosts
// where `defaults` is unavailable, such as a Linux CI runner that has the
// preferences file synced from a Mac.
type PlistPreference struct {
	Fs   afero.Fs
	Path string
}

// NewPlistPreference returns a PlistPreference for
// <home>/Library/Preferences/com.apple.dt.Xcode.plist.
func NewPlistPreference(fsys afero.Fs, home string) *PlistPreference {
	return &PlistPreference{
		Fs:   fsys,
		Path: filepath.Join(home, "Library", "Preferences", xcodeDomain+".plist"),
	}
}

type xcodePreferences struct {
	CustomDerivedDataLocation string `plist:"IDECustomDerivedDataLocation"`
}

func (p *PlistPreference) CustomDerivedDataLocation(ctx context.Context) string {
	data, err := afero.ReadFile(p.Fs, p.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(ctx).Debug("cannot read Xcode preferences", "path", p.Path, "err", err)
		}
		return ""
	}

	var prefs xcodePreferences
	if _, err := plist.Unmarshal(data, &prefs); err != nil {
		logger.FromContext(ctx).Debug("cannot decode Xcode preferences", "path", p.Path, "err", err)
		return ""
	}
	return strings.TrimSpace(prefs.CustomDerivedDataLocation)
}

// PreferenceChain consults each source in order and returns the first
// non-empty location.
type PreferenceChain []PreferenceSource

func (c PreferenceChain) CustomDerivedDataLocation(ctx context.Context) string {
	for _, src := range c {
		if src == nil {
			continue
		}
		if loc := src.CustomDerivedDataLocation(ctx); loc != "" {
			return loc
		}
	}
	return ""
}
