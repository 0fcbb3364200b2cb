package web

import (
	"embed"
	"io/fs"
)

// staticFS embeds the catalog table UI (web/dist) into the Go binary so the
// server ships as a single artifact.
//
//go:embed all:dist
var staticFS embed.FS

// FS returns the embedded filesystem containing the frontend static files,
// rooted at the dist directory.
func FS() (fs.FS, error) {
	return fs.Sub(staticFS, "dist")
}
