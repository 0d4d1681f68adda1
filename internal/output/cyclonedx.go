package output

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StinkyLord/xctools/internal/fingerprints"
	"github.com/StinkyLord/xctools/internal/model"
)

// ---- CycloneDX 1.4 JSON schema types ----

type cdxBOM struct {
	BOMFormat    string         `json:"bomFormat"`
	SpecVersion  string         `json:"specVersion"`
	Version      int            `json:"version"`
	SerialNumber string         `json:"serialNumber"`
	Metadata     cdxMetadata    `json:"metadata"`
	Components   []cdxComponent `json:"components"`
}

type cdxMetadata struct {
	Timestamp string      `json:"timestamp"`
	Tools     []cdxTool   `json:"tools"`
	Authors   []cdxAuthor `json:"authors,omitempty"`
}

type cdxTool struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// cdxAuthor carries contributor names only; emails are never exported.
type cdxAuthor struct {
	Name string `json:"name"`
}

type cdxComponent struct {
	Type               string           `json:"type"`
	BOMRef             string           `json:"bom-ref"`
	Name               string           `json:"name"`
	Version            string           `json:"version"`
	Author             string           `json:"author,omitempty"`
	PURL               string           `json:"purl,omitempty"`
	Licenses           []cdxLicenseItem `json:"licenses,omitempty"`
	ExternalReferences []cdxExternalRef `json:"externalReferences,omitempty"`
}

type cdxLicenseItem struct {
	License cdxLicense `json:"license"`
}

// cdxLicense carries either an SPDX ID or a free-form name.
type cdxLicense struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name,omitempty"`
	Text *cdxAttachment `json:"text,omitempty"`
}

type cdxAttachment struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type cdxExternalRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// WriteCycloneDX serialises the package list as a CycloneDX 1.4 JSON SBOM
// and writes it to path (or stdout if "-"). Contributors become metadata
// authors. Unlike the acknowledgements format the output carries a fresh
// timestamp and serial number on every run.
func (w *Writer) WriteCycloneDX(report *model.Acknowledgements, path string, toolVersion string) error {
	if report == nil {
		report = model.NewAcknowledgements(nil, nil)
	}
	return w.writeJSON(path, buildCycloneDX(report, toolVersion, time.Now()))
}

func buildCycloneDX(report *model.Acknowledgements, toolVersion string, now time.Time) cdxBOM {
	comps := make([]cdxComponent, 0, len(report.Packages))
	for _, p := range report.Packages {
		purl := swiftPURL(p)
		comp := cdxComponent{
			Type:    "library",
			BOMRef:  purl,
			Name:    p.Name,
			Version: "unknown",
			Author:  p.Author,
			PURL:    purl,
		}
		if p.License != nil {
			lic := cdxLicense{Text: &cdxAttachment{ContentType: "text/plain", Content: *p.License}}
			if fp := fingerprints.MatchLicense(*p.License); fp != nil {
				lic.ID = fp.ID
			} else {
				lic.Name = licenseTitle(*p.License, p.Name)
			}
			comp.Licenses = []cdxLicenseItem{{License: lic}}
		}
		if p.URL != "" {
			comp.ExternalReferences = []cdxExternalRef{{Type: "vcs", URL: p.URL}}
		}
		comps = append(comps, comp)
	}

	var authors []cdxAuthor
	for _, c := range report.Contributors {
		authors = append(authors, cdxAuthor{Name: c.Name})
	}

	return cdxBOM{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		Version:      1,
		SerialNumber: "urn:uuid:" + uuid.NewString(),
		Metadata: cdxMetadata{
			Timestamp: now.UTC().Format(time.RFC3339),
			Tools: []cdxTool{
				{
					Vendor:  "StinkyLord",
					Name:    "xctools",
					Version: toolVersion,
				},
			},
			Authors: authors,
		},
		Components: comps,
	}
}

// swiftPURL builds pkg:swift/<host>/<owner>/<repo> for hosted packages and
// falls back to pkg:generic/<name> for local or unparseable locations.
func swiftPURL(p model.PackageAcknowledgement) string {
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return "pkg:generic/" + p.Name
	}
	path := strings.Trim(strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), ".git"), "/")
	if path == "" {
		return "pkg:generic/" + p.Name
	}
	return "pkg:swift/" + u.Hostname() + "/" + path
}

// licenseTitle returns the first non-blank line of a license text, which
// for most licenses is its name ("MIT License", "Apache License").
func licenseTitle(text, pkg string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			if r := []rune(t); len(r) > 80 {
				t = string(r[:80])
			}
			return t
		}
	}
	return "LicenseRef-" + pkg
}
