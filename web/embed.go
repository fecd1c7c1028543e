// Package web embeds the static browser UI served by the API binary.
package web

import "embed"

// Assets holds the static files for the classification form.
//
//go:embed index.html
var Assets embed.FS
