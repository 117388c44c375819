package repository

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres, *gorm.DB for SQLite). Repositories MUST accept nil
// and fall back to their own connection pool.
type Tx interface{}

var NoTX Tx
