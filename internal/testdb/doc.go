// Package testdb provides Postgres helpers for tests.
//
// Tests that need a database call Open, which skips the test unless
// SCRY_TUTOR_TEST_DATABASE_URL is set, and then run each case inside WithTx so
// that everything they write is rolled back when the case finishes:
//
//	db := testdb.Open(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		kv := postgres.NewPostgresKVStore(tx, nil)
//		...
//	})
package testdb
