// Package web holds the dashboard templates and browser assets.
package web

import "embed"

// Assets holds templates/*.html and static/.
//
//go:embed templates/*.html static
var Assets embed.FS
