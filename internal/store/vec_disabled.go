//go:build !(sqlite_vec && cgo)

package store

import _ "modernc.org/sqlite"

// Default builds use the pure-Go driver; sample similarity search falls
// back to in-process cosine distance over stored embeddings.
const sqliteDriverName = "sqlite"
