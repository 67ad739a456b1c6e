// Package migrations embeds the versioned schema scripts for both supported
// database engines. Scripts are written to be safe to re-run: object
// creation is guarded with IF NOT EXISTS so a partially recorded state never
// wedges startup.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
