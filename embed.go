package letterpress

import "embed"

// migrationFS contains the goose SQL migrations applied by NewStore.
//
//go:embed migrations/*.sql
var migrationFS embed.FS
