//go:build sqlite_vec && cgo

package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// With the sqlite_vec tag the store runs on the cgo driver and registers
// sqlite-vec as an auto-loadable extension, enabling vec0 ANN search over
// sample embeddings.
const sqliteDriverName = "sqlite3"

func init() {
	vec.Auto()
}
