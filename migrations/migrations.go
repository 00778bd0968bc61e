// Package migrations embeds the dev schema scripts, one directory per driver.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

// InitSQL returns the drop-and-create script for the given driver.
func InitSQL(driver string) (string, error) {
	b, err := files.ReadFile(driver + "/001_init.sql")
	if err != nil {
		return "", fmt.Errorf("no migration for driver %q: %w", driver, err)
	}
	return string(b), nil
}
