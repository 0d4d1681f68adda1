package packages

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/StinkyLord/xctools/internal/model"
)

var (
	// ErrManifestRead is returned when workspace-state.json cannot be read.
	ErrManifestRead = errors.New("failed to read workspace-state.json")

	// ErrManifestParse is returned when workspace-state.json does not have
	// the expected {object: {dependencies: [{packageRef: {...}}]}} shape.
	ErrManifestParse = errors.New("failed to parse workspace-state.json")
)

// workspaceState mirrors the subset of SwiftPM's workspace-state.json that
// carries resolved package references. Pointers distinguish absent keys
// from zero values so a truncated file is rejected instead of read as empty.
type workspaceState struct {
	Object *struct {
		Dependencies *[]workspaceDependency `json:"dependencies"`
	} `json:"object"`
}

type workspaceDependency struct {
	PackageRef *struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
	} `json:"packageRef"`
}

// ReadManifest parses the workspace-state.json at path into one reference per
// package name, in manifest order. A later entry with an already seen name
// replaces the location of the earlier one.
func (r *Reader) ReadManifest(path string) ([]model.PackageReference, error) {
	data, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w; error='%w'", ErrManifestRead, err)
	}
	return parseManifest(data)
}

func parseManifest(data []byte) ([]model.PackageReference, error) {
	var state workspaceState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w; error='%w'", ErrManifestParse, err)
	}
	if state.Object == nil {
		return nil, fmt.Errorf("%w; error='missing field `object`'", ErrManifestParse)
	}
	if state.Object.Dependencies == nil {
		return nil, fmt.Errorf("%w; error='missing field `object.dependencies`'", ErrManifestParse)
	}

	refs := make([]model.PackageReference, 0, len(*state.Object.Dependencies))
	seen := make(map[string]int, len(*state.Object.Dependencies))
	for i, dep := range *state.Object.Dependencies {
		ref := dep.PackageRef
		switch {
		case ref == nil:
			return nil, fmt.Errorf("%w; error='dependency %d: missing field `packageRef`'", ErrManifestParse, i)
		case ref.Name == nil:
			return nil, fmt.Errorf("%w; error='dependency %d: missing field `packageRef.name`'", ErrManifestParse, i)
		case ref.Location == nil:
			return nil, fmt.Errorf("%w; error='dependency %d: missing field `packageRef.location`'", ErrManifestParse, i)
		}
		if j, ok := seen[*ref.Name]; ok {
			refs[j].Location = *ref.Location
			continue
		}
		seen[*ref.Name] = len(refs)
		refs = append(refs, model.PackageReference{Name: *ref.Name, Location: *ref.Location})
	}
	return refs, nil
}
