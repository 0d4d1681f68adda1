// Package packages reads Swift Package Manager metadata from a DerivedData
// directory and turns it into package acknowledgements.
//
// Two sources are combined:
//   - SourcePackages/workspace-state.json  (resolved package references)
//   - SourcePackages/checkouts/<name>/     (license files of each checkout)
package packages

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/StinkyLord/xctools/internal/logger"
	"github.com/StinkyLord/xctools/internal/model"
)

const (
	sourcePackagesDir = "SourcePackages"
	checkoutsDir      = "checkouts"
	manifestFile      = "workspace-state.json"
)

// DefaultLicensePatterns matches any file name containing "license".
var DefaultLicensePatterns = []string{"*license*"}

// Reader extracts package acknowledgements from a DerivedData directory.
type Reader struct {
	Fs              afero.Fs
	LicensePatterns []string
}

// NewReader returns a Reader. Empty patterns select DefaultLicensePatterns.
func NewReader(fsys afero.Fs, licensePatterns []string) *Reader {
	if len(licensePatterns) == 0 {
		licensePatterns = DefaultLicensePatterns
	}
	return &Reader{Fs: fsys, LicensePatterns: licensePatterns}
}

// Read returns one acknowledgement per resolved package of the DerivedData
// directory artifactsDir, sorted by package name.
func (r *Reader) Read(ctx context.Context, artifactsDir string) ([]model.PackageAcknowledgement, error) {
	root := filepath.Join(artifactsDir, sourcePackagesDir)

	licenses, err := r.ReadLicenses(ctx, filepath.Join(root, checkoutsDir))
	if err != nil {
		return nil, err
	}
	refs, err := r.ReadManifest(filepath.Join(root, manifestFile))
	if err != nil {
		return nil, err
	}

	acks := Acknowledge(refs, licenses)
	logger.FromContext(ctx).Debug("read package metadata",
		"packages", len(acks), "licenses", len(licenses))
	return acks, nil
}

// Acknowledge joins package references with license texts by name. The
// result has exactly one entry per reference, in name order.
func Acknowledge(refs []model.PackageReference, licenses map[string]string) []model.PackageAcknowledgement {
	acks := make([]model.PackageAcknowledgement, 0, len(refs))
	for _, ref := range refs {
		var license *string
		if text, ok := licenses[ref.Name]; ok {
			license = &text
		}
		acks = append(acks, model.NewPackageAcknowledgement(ref.Name, ref.Location, license))
	}
	sort.Slice(acks, func(i, j int) bool { return acks[i].Name < acks[j].Name })
	return acks
}
