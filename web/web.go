// Package web holds the lookup form served at "/".
package web

import "embed"

//go:embed index.html app.js
var Assets embed.FS
