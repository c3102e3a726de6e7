// Package report renders and writes the per-run artifacts: a Markdown
// document and a CSV export, plus an optional XLSX workbook in full
// mode. Rendering is a pure function of the lead data; writing goes
// through the FileStore capability.
package report

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insightflow/leadscout/internal/model"
)

// Assembler writes run artifacts to the output directory.
type Assembler struct {
	store      FileStore
	outputDir  string
	enableXLSX bool
}

// NewAssembler builds an assembler writing through store into dir.
func NewAssembler(store FileStore, dir string, enableXLSX bool) *Assembler {
	return &Assembler{store: store, outputDir: dir, enableXLSX: enableXLSX}
}

// WriteBroad writes the broad-mode markdown and CSV. Artifacts are
// independent, so they render and write concurrently.
func (a *Assembler) WriteBroad(productName string, leads []model.RawLead, now time.Time) (ArtifactPaths, error) {
	paths := PathsFor(a.outputDir, productName, now)
	paths.XLSX = ""

	var g errgroup.Group
	g.Go(func() error {
		md := RenderBroadMarkdown(productName, leads, now)
		return a.store.Save(paths.Markdown, []byte(md))
	})
	g.Go(func() error {
		data, err := RenderBroadCSV(leads)
		if err != nil {
			return err
		}
		return a.store.Save(paths.CSV, data)
	})

	if err := g.Wait(); err != nil {
		return ArtifactPaths{}, eris.Wrap(err, "report: write broad artifacts")
	}
	zap.L().Info("report: broad artifacts written",
		zap.String("markdown", paths.Markdown),
		zap.String("csv", paths.CSV),
	)
	return paths, nil
}

// WriteFull writes the full-mode artifacts. The narrative comes from
// the writer stage and is stored verbatim.
func (a *Assembler) WriteFull(productName, narrative string, leads []model.EnrichedLead, now time.Time) (ArtifactPaths, error) {
	paths := PathsFor(a.outputDir, productName, now)
	if !a.enableXLSX {
		paths.XLSX = ""
	}

	var g errgroup.Group
	g.Go(func() error {
		return a.store.Save(paths.Markdown, []byte(narrative))
	})
	g.Go(func() error {
		data, err := RenderFullCSV(leads)
		if err != nil {
			return err
		}
		return a.store.Save(paths.CSV, data)
	})
	if a.enableXLSX {
		g.Go(func() error {
			data, err := RenderFullXLSX(leads)
			if err != nil {
				return err
			}
			return a.store.Save(paths.XLSX, data)
		})
	}

	if err := g.Wait(); err != nil {
		return ArtifactPaths{}, eris.Wrap(err, "report: write full artifacts")
	}
	zap.L().Info("report: full artifacts written",
		zap.String("markdown", paths.Markdown),
		zap.String("csv", paths.CSV),
		zap.String("xlsx", paths.XLSX),
	)
	return paths, nil
}
