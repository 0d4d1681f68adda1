// Package model defines the data structures shared by the acknowledgements pipeline.
package model

import "strings"

// PackageReference is one resolved dependency as recorded by Swift Package
// Manager in workspace-state.json.
type PackageReference struct {
	Name     string `json:"name"`
	Location string `json:"location"` // Repository URL or local path
}

// PackageAcknowledgement is a single third-party package entry of the report.
// License is nil when the package checkout carries no license file, which
// serialises as JSON null.
type PackageAcknowledgement struct {
	Name    string  `json:"name"`
	License *string `json:"license"`
	Author  string  `json:"author"`
	URL     string  `json:"url"`
}

// NewPackageAcknowledgement builds an acknowledgement for a package located at
// location, deriving the author from the URL path.
func NewPackageAcknowledgement(name, location string, license *string) PackageAcknowledgement {
	return PackageAcknowledgement{
		Name:    name,
		License: license,
		Author:  AuthorFromLocation(location),
		URL:     location,
	}
}

// AuthorFromLocation returns the second-to-last "/"-separated segment of a
// package location, which is the owner for hosted repositories:
//
//	https://github.com/acme/widget -> acme
//
// Locations with a single segment fall back to that segment, or "unknown"
// when it is empty.
func AuthorFromLocation(location string) string {
	parts := strings.Split(location, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	if parts[0] == "" {
		return "unknown"
	}
	return parts[0]
}
