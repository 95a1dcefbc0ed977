// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver. It owns the embedded goose migrations, maps pgconn error
// codes onto store sentinels and runs every query over store.DBTX so the same
// store works inside and outside a transaction.
package postgres
