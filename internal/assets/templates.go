// Package assets carries the embedded HTML pages. A configured template
// directory overrides the embedded copies, which keeps page tweaks
// possible without a rebuild.
package assets

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

//go:embed templates/*.html
var embeddedPages embed.FS

// Page template names, matching the files under templates/.
const (
	PageIndex            = "index.html"
	PageSeparation       = "separation-of-variables.html"
	PageUndetermined     = "undetermined-coefficients.html"
	PageIntegratingFact  = "integrating-factor.html"
	PageCharacteristic   = "characteristic-polynomials.html"
	PagePhasePortraits   = "phase-portraits.html"
	navigationPartial    = "nav.html"
	embeddedTemplateGlob = "templates/*.html"
)

// LoadPageTemplates parses the page templates. With an empty directory
// the embedded pages are used; otherwise the directory must exist and
// hold the full template set.
func LoadPageTemplates(directory string) (*template.Template, error) {
	if directory == "" {
		tmpl, err := template.ParseFS(embeddedPages, embeddedTemplateGlob)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
		}
		return tmpl, nil
	}

	// If a directory is provided, it must be valid.
	if _, err := os.Stat(directory); err != nil {
		return nil, fmt.Errorf("template directory not found or accessible: %w", err)
	}
	tmpl, err := template.ParseGlob(filepath.Join(directory, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates in %s: %w", directory, err)
	}
	return tmpl, nil
}
