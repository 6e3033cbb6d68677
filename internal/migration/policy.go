package migration

import "strings"

// TestMarker is the substring that marks a migration file as test-only.
const TestMarker = "test"

// Skip reports whether a migration must not be executed this run:
// a migration that already ran is always skipped, test mode runs every
// pending migration, and otherwise test-marked names are skipped.
func Skip(alreadyRan bool, name string, runTestMigrations bool) bool {
	if alreadyRan {
		return true
	}
	if runTestMigrations {
		return false
	}
	return strings.Contains(name, TestMarker)
}
