//go:build integration

// Package testdb provides helpers for integration tests that need PostgreSQL.
//
// Each test runs in its own transaction which is rolled back when the test
// completes, so tests can run in parallel against one database:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        progress := postgres.NewPostgresProgressStore(tx, nil)
//	        ...
//	    })
//	}
//
// Tests are skipped when neither DATABASE_URL nor SCRY_TEST_DB_URL is set.
// The schema is migrated once per test binary.
package testdb
