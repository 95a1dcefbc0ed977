package ciutil

import "log/slog"

// TestDatabaseURL returns the database URL for integration tests from
// DATABASE_URL, SCRY_TEST_DB_URL or SCRY_DATABASE_URL, in that order.
// It returns "" when none is set.
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks(
		[]string{EnvDatabaseURL, EnvScryTestDBURL, EnvScryDatabaseURL},
		"",
		logger,
	)
}
