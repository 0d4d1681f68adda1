// Package fingerprints provides a database of common open source licenses
// mapped to the phrases that identify their text. It lets reports carry an
// SPDX identifier instead of only the raw license file.
package fingerprints

import "strings"

// LicenseFingerprint describes how to recognise a license text.
type LicenseFingerprint struct {
	ID      string   // SPDX license identifier
	Name    string   // Human readable name
	Phrases []string // Lowercased phrases that must all appear in the text
}

// KnownLicenses is the built-in fingerprint database. Order matters: more
// specific licenses come before the ones whose phrases they contain.
var KnownLicenses = []LicenseFingerprint{
	{
		ID:      "MIT",
		Name:    "MIT License",
		Phrases: []string{"permission is hereby granted, free of charge", "the above copyright notice"},
	},
	{
		ID:      "Apache-2.0",
		Name:    "Apache License 2.0",
		Phrases: []string{"apache license", "version 2.0"},
	},
	{
		ID:   "BSD-3-Clause",
		Name: "BSD 3-Clause \"New\" or \"Revised\" License",
		Phrases: []string{
			"redistribution and use in source and binary forms",
			"neither the name",
		},
	},
	{
		ID:      "BSD-2-Clause",
		Name:    "BSD 2-Clause \"Simplified\" License",
		Phrases: []string{"redistribution and use in source and binary forms"},
	},
	{
		ID:      "ISC",
		Name:    "ISC License",
		Phrases: []string{"permission to use, copy, modify, and/or distribute this software for any purpose"},
	},
	{
		ID:      "MPL-2.0",
		Name:    "Mozilla Public License 2.0",
		Phrases: []string{"mozilla public license", "version 2.0"},
	},
	{
		ID:      "LGPL-3.0-only",
		Name:    "GNU Lesser General Public License v3.0 only",
		Phrases: []string{"gnu lesser general public license", "version 3"},
	},
	{
		ID:      "GPL-3.0-only",
		Name:    "GNU General Public License v3.0 only",
		Phrases: []string{"gnu general public license", "version 3"},
	},
	{
		ID:      "Unlicense",
		Name:    "The Unlicense",
		Phrases: []string{"this is free and unencumbered software released into the public domain"},
	},
	{
		ID:   "Zlib",
		Name: "zlib License",
		Phrases: []string{
			"provided 'as-is', without any express or implied",
			"altered source versions must be plainly marked",
		},
	},
}

// normalize lowercases text and collapses whitespace runs, so phrases match
// across the line wrapping of license files.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// MatchLicense returns the first LicenseFingerprint whose phrases all occur
// in text. Returns nil if no match is found.
func MatchLicense(text string) *LicenseFingerprint {
	norm := normalize(text)
	if norm == "" {
		return nil
	}
	for i := range KnownLicenses {
		fp := &KnownLicenses[i]
		matched := true
		for _, phrase := range fp.Phrases {
			if !strings.Contains(norm, phrase) {
				matched = false
				break
			}
		}
		if matched {
			return fp
		}
	}
	return nil
}
