// Package views holds the HTML templates rendered by internal/handlers.
package views

import "embed"

//go:embed *.html
var TemplatesFS embed.FS
