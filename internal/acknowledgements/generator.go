// Package acknowledgements runs the full pipeline: locate the app's
// DerivedData, read package metadata, mine and reconcile contributors, and
// write the report.
package acknowledgements

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/StinkyLord/xctools/internal/contributors"
	"github.com/StinkyLord/xctools/internal/derived"
	"github.com/StinkyLord/xctools/internal/logger"
	"github.com/StinkyLord/xctools/internal/model"
	"github.com/StinkyLord/xctools/internal/output"
	"github.com/StinkyLord/xctools/internal/packages"
)

// Format selects the report serialisation.
type Format string

const (
	FormatAcknowledgements Format = "acknowledgements"
	FormatCycloneDX        Format = "cyclonedx"
)

// Generator wires the pipeline components together.
type Generator struct {
	Locator    *derived.Locator
	Packages   *packages.Reader
	Miner      *contributors.Miner
	Reconciler contributors.Reconciler
	Writer     *output.Writer

	// Format defaults to FormatAcknowledgements.
	Format Format

	// ToolVersion is recorded in CycloneDX metadata.
	ToolVersion string
}

// New returns a Generator whose filesystem-backed components share fsys.
func New(fsys afero.Fs, prefs derived.PreferenceSource, history contributors.History, aliases contributors.Aliases) *Generator {
	return &Generator{
		Locator:  derived.NewLocator(fsys, prefs),
		Packages: packages.NewReader(fsys, nil),
		Miner:    contributors.NewMiner(history, aliases),
		Writer:   output.NewWriter(fsys),
		Format:   FormatAcknowledgements,
	}
}

// Generate builds the report for appName and writes it to outputPath. It
// returns the confirmation line naming the file written. Nothing is written
// unless every fatal step succeeded; missing version control history only
// yields an empty contributor list.
func (g *Generator) Generate(ctx context.Context, appName, outputPath string) (string, error) {
	log := logger.FromContext(ctx)

	format := g.Format
	if format == "" {
		format = FormatAcknowledgements
	}
	if format != FormatAcknowledgements && format != FormatCycloneDX {
		return "", wrap("format", unknownFormat(format))
	}

	artifacts, err := g.Locator.Locate(ctx, appName)
	if err != nil {
		return "", wrap("locate", err)
	}
	log.Info("found DerivedData", "path", artifacts)

	pkgs, err := g.Packages.Read(ctx, artifacts)
	if err != nil {
		return "", wrap("read packages", err)
	}
	log.Info("read packages", "count", len(pkgs))

	var people []model.Contributor
	if g.Miner != nil {
		people = g.Reconciler.Reconcile(g.Miner.Mine(ctx))
	}
	log.Info("reconciled contributors", "count", len(people))

	report := model.NewAcknowledgements(pkgs, people)
	path := g.Writer.ResolveOutputPath(outputPath)

	switch format {
	case FormatCycloneDX:
		err = g.Writer.WriteCycloneDX(report, path, g.ToolVersion)
	default:
		err = g.Writer.WriteAcknowledgements(report, path)
	}
	if err != nil {
		return "", wrap("write", err)
	}

	return fmt.Sprintf("✅ Acknowledgements written to: %s", path), nil
}
