package packages

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/StinkyLord/xctools/internal/logger"
)

var (
	// ErrCheckoutsDirMissing is returned when SourcePackages/checkouts is
	// absent or not a directory.
	ErrCheckoutsDirMissing = errors.New("failed to read packages directory contents; directory does not exist")

	// ErrDirRead wraps failures while enumerating checkouts.
	ErrDirRead = errors.New("failed to read packages directory contents")

	// ErrLicenseRead wraps failures while reading a matched license file.
	ErrLicenseRead = errors.New("failed to read license")
)

// ReadLicenses returns the license text of every package checkout under dir,
// keyed by checkout directory name. For each checkout the first regular file
// (in name order) whose lowercased name matches a license pattern is used.
// Checkouts without such a file are absent from the result.
func (r *Reader) ReadLicenses(ctx context.Context, dir string) (map[string]string, error) {
	info, err := r.Fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCheckoutsDirMissing, dir)
	}

	entries, err := afero.ReadDir(r.Fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w; error='%w'", ErrDirRead, err)
	}

	log := logger.FromContext(ctx)
	licenses := make(map[string]string)
	for _, entry := range entries {
		pkgDir := filepath.Join(dir, entry.Name())
		if st, err := r.Fs.Stat(pkgDir); err != nil || !st.IsDir() {
			continue
		}

		licensePath, err := r.findLicenseFile(pkgDir)
		if err != nil {
			return nil, err
		}
		if licensePath == "" {
			log.Debug("no license file in checkout", "package", entry.Name())
			continue
		}

		data, err := afero.ReadFile(r.Fs, licensePath)
		if err != nil {
			return nil, fmt.Errorf("%w; error='%w'", ErrLicenseRead, err)
		}
		text, err := decodeLicense(data)
		if err != nil {
			return nil, fmt.Errorf("%w; error='%s: %w'", ErrLicenseRead, licensePath, err)
		}
		log.Debug("found license", "package", entry.Name(), "file", filepath.Base(licensePath))
		licenses[entry.Name()] = text
	}
	return licenses, nil
}

// decodeLicense returns data as text. Files that are not valid UTF-8 are
// read as ISO 8859-1, which maps every byte to a code point.
func decodeLicense(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// findLicenseFile returns the first license file directly inside pkgDir, or
// "" when there is none.
func (r *Reader) findLicenseFile(pkgDir string) (string, error) {
	children, err := afero.ReadDir(r.Fs, pkgDir)
	if err != nil {
		return "", fmt.Errorf("%w; error='%w'", ErrDirRead, err)
	}
	for _, child := range children {
		if !r.isLicenseName(child.Name()) {
			continue
		}
		path := filepath.Join(pkgDir, child.Name())
		st, err := r.Fs.Stat(path)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		return path, nil
	}
	return "", nil
}

func (r *Reader) isLicenseName(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range r.LicensePatterns {
		ok, err := doublestar.Match(strings.ToLower(pattern), lower)
		if err == nil && ok {
			return true
		}
	}
	return false
}
