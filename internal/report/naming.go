package report

import (
	"path/filepath"
	"strings"
	"time"
)

const maxSlugLen = 30

// Slug derives the artifact filename prefix from a product name:
// spaces become underscores and the result is capped at 30 runes.
func Slug(productName string) string {
	slug := strings.ReplaceAll(strings.TrimSpace(productName), " ", "_")
	runes := []rune(slug)
	if len(runes) > maxSlugLen {
		slug = string(runes[:maxSlugLen])
	}
	if slug == "" {
		slug = "report"
	}
	return slug
}

// ArtifactPaths are the per-run output file locations.
type ArtifactPaths struct {
	Markdown string
	CSV      string
	XLSX     string
}

// PathsFor computes artifact paths as {slug}_{timestamp}.{ext} under dir.
func PathsFor(dir, productName string, now time.Time) ArtifactPaths {
	base := Slug(productName) + "_" + now.Format("20060102_150405")
	return ArtifactPaths{
		Markdown: filepath.Join(dir, base+".md"),
		CSV:      filepath.Join(dir, base+".csv"),
		XLSX:     filepath.Join(dir, base+".xlsx"),
	}
}
