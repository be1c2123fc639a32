// Package web embeds the storefront's static assets.
package web

import "embed"

//go:embed static
var StaticFS embed.FS
