package packages

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/xctools/internal/model"
)

const artifacts = "/dd/MyApp-abc"

var (
	checkouts = filepath.Join(artifacts, "SourcePackages", "checkouts")
	manifest  = filepath.Join(artifacts, "SourcePackages", "workspace-state.json")
)

const twoPackageManifest = `{
  "object": {
    "artifacts": [],
    "dependencies": [
      {"basedOn": null, "packageRef": {"identity": "widget", "kind": "remoteSourceControl", "location": "https://github.com/acme/widget", "name": "widget"}, "state": {}},
      {"packageRef": {"name": "gadget", "location": "https://gitlab.com/tools/gadget.git"}}
    ]
  },
  "version": 6
}`

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

func byName(acks []model.PackageAcknowledgement) map[string]model.PackageAcknowledgement {
	m := make(map[string]model.PackageAcknowledgement, len(acks))
	for _, a := range acks {
		m[a.Name] = a
	}
	return m
}

// ============================================================
// workspace-state.json
// ============================================================

func TestReadManifest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, manifest, twoPackageManifest)

	refs, err := NewReader(fsys, nil).ReadManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, []model.PackageReference{
		{Name: "widget", Location: "https://github.com/acme/widget"},
		{Name: "gadget", Location: "https://gitlab.com/tools/gadget.git"},
	}, refs)
}

func TestReadManifest_DuplicateNameLastWins(t *testing.T) {
	refs, err := parseManifest([]byte(`{"object":{"dependencies":[
		{"packageRef":{"name":"widget","location":"https://github.com/old/widget"}},
		{"packageRef":{"name":"gadget","location":"https://gitlab.com/tools/gadget.git"}},
		{"packageRef":{"name":"widget","location":"https://github.com/new/widget"}}
	]}}`))
	require.NoError(t, err)
	assert.Equal(t, []model.PackageReference{
		{Name: "widget", Location: "https://github.com/new/widget"},
		{Name: "gadget", Location: "https://gitlab.com/tools/gadget.git"},
	}, refs)
}

func TestReadManifest_EmptyDependencies(t *testing.T) {
	refs, err := parseManifest([]byte(`{"object":{"dependencies":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := NewReader(afero.NewMemMapFs(), nil).ReadManifest(manifest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrManifestRead)
	assert.Contains(t, err.Error(), "failed to read workspace-state.json")
}

func TestReadManifest_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{not json`,
		"missing object":     `{"version": 6}`,
		"missing deps":       `{"object": {}}`,
		"null deps":          `{"object": {"dependencies": null}}`,
		"missing packageRef": `{"object": {"dependencies": [{}]}}`,
		"missing name":       `{"object": {"dependencies": [{"packageRef": {"location": "x"}}]}}`,
		"missing location":   `{"object": {"dependencies": [{"packageRef": {"name": "x"}}]}}`,
		"wrong type":         `{"object": {"dependencies": "widget"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseManifest([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrManifestParse)
			assert.NotErrorIs(t, err, ErrManifestRead)
		})
	}
}

// ============================================================
// License discovery
// ============================================================

func TestReadLicenses(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(checkouts, "widget", "LICENSE.md"), "MIT License")
	writeFile(t, fsys, filepath.Join(checkouts, "widget", "NOTICE.txt"), "notice")
	writeFile(t, fsys, filepath.Join(checkouts, "gadget", "License"), "Apache-2.0")
	writeFile(t, fsys, filepath.Join(checkouts, "plain", "README.md"), "readme")
	// A stray file at the checkouts level is not a package.
	writeFile(t, fsys, filepath.Join(checkouts, "LICENSE"), "ignored")

	licenses, err := NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"widget": "MIT License",
		"gadget": "Apache-2.0",
	}, licenses)
}

func TestReadLicenses_CaseInsensitiveSubstring(t *testing.T) {
	for _, name := range []string{"LICENSE", "license.txt", "MIT-LICENSE", "UNLICENSE", "Licensed.md"} {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, filepath.Join(checkouts, "pkg", name), "text")

			licenses, err := NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
			require.NoError(t, err)
			assert.Equal(t, "text", licenses["pkg"])
		})
	}
}

func TestReadLicenses_IgnoresNestedAndDirectories(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(filepath.Join(checkouts, "pkg", "LICENSES"), 0o755))
	writeFile(t, fsys, filepath.Join(checkouts, "pkg", "LICENSES", "MIT.txt"), "nested")
	writeFile(t, fsys, filepath.Join(checkouts, "pkg", "Sources", "license.swift"), "code")

	licenses, err := NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
	require.NoError(t, err)
	assert.Empty(t, licenses)
}

func TestReadLicenses_CustomPatterns(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(checkouts, "gpl", "COPYING"), "GPL")

	licenses, err := NewReader(fsys, []string{"*license*", "copying*"}).ReadLicenses(context.Background(), checkouts)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gpl": "GPL"}, licenses)
}

func TestReadLicenses_Latin1(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(checkouts, "legacy", "LICENSE"), "Copyright \xa9 Jos\xe9 M\xfcller")
	writeFile(t, fsys, filepath.Join(checkouts, "modern", "LICENSE"), "Copyright © José")

	licenses, err := NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
	require.NoError(t, err)
	assert.Equal(t, "Copyright © José Müller", licenses["legacy"])
	assert.Equal(t, "Copyright © José", licenses["modern"])
	assert.NotContains(t, licenses["legacy"], "\ufffd")
}

func TestReadLicenses_MissingDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
	assert.ErrorIs(t, err, ErrCheckoutsDirMissing)

	writeFile(t, fsys, checkouts, "not a dir")
	_, err = NewReader(fsys, nil).ReadLicenses(context.Background(), checkouts)
	assert.ErrorIs(t, err, ErrCheckoutsDirMissing)
}

// ============================================================
// Join
// ============================================================

func TestAcknowledge(t *testing.T) {
	refs := []model.PackageReference{
		{Name: "zeta", Location: "https://github.com/z/zeta"},
		{Name: "alpha", Location: "https://github.com/a/alpha"},
		{Name: "single", Location: "single"},
	}
	licenses := map[string]string{"alpha": "MIT", "orphan": "BSD"}

	acks := Acknowledge(refs, licenses)
	require.Len(t, acks, 3)
	assert.Equal(t, []string{"alpha", "single", "zeta"}, []string{acks[0].Name, acks[1].Name, acks[2].Name})

	require.NotNil(t, acks[0].License)
	assert.Equal(t, "MIT", *acks[0].License)
	assert.Equal(t, "a", acks[0].Author)
	assert.Equal(t, "single", acks[1].Author)
	assert.Nil(t, acks[2].License)
}

func TestRead_OneLicensedOneNot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, manifest, twoPackageManifest)
	writeFile(t, fsys, filepath.Join(checkouts, "widget", "LICENSE"), "MIT License")
	require.NoError(t, fsys.MkdirAll(filepath.Join(checkouts, "gadget"), 0o755))

	acks, err := NewReader(fsys, nil).Read(context.Background(), artifacts)
	require.NoError(t, err)
	require.Len(t, acks, 2)

	m := byName(acks)
	require.NotNil(t, m["widget"].License)
	assert.Equal(t, "MIT License", *m["widget"].License)
	assert.Equal(t, "acme", m["widget"].Author)
	assert.Nil(t, m["gadget"].License)
	assert.Equal(t, "tools", m["gadget"].Author)
}

func TestRead_NamesMatchManifest(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, manifest, twoPackageManifest)
	// A checkout with no manifest entry must not appear in the output.
	writeFile(t, fsys, filepath.Join(checkouts, "stale", "LICENSE"), "old")

	acks, err := NewReader(fsys, nil).Read(context.Background(), artifacts)
	require.NoError(t, err)

	var names []string
	for _, a := range acks {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"gadget", "widget"}, names)
}

func TestRead_MissingCheckoutsFails(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, manifest, twoPackageManifest)

	_, err := NewReader(fsys, nil).Read(context.Background(), artifacts)
	assert.ErrorIs(t, err, ErrCheckoutsDirMissing)
}
