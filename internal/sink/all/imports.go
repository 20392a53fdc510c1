// Package all wires all built-in sink backends into the sink factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete backend to run, which in
// turn register their factories with the sink package.
//
// In other words, importing this package makes the following sink kinds
// available at runtime:
//
//   - "csvfile"  (synthgen/internal/sink/csvfile)
//   - "postgres" (synthgen/internal/sink/postgres)
//   - "sqlite"   (synthgen/internal/sink/sqlite)
//   - "mysql"    (synthgen/internal/sink/mysql)
//   - "mssql"    (synthgen/internal/sink/mssql)
//
// Typical usage (in cmd/synthgen/main.go or a similar wiring layer):
//
//	import (
//	    _ "synthgen/internal/sink/all" // enable all built-in backends
//
//	    "synthgen/internal/sink"
//	)
//
//	w, err := sink.New(ctx, sink.Config{Kind: "csvfile", Path: "out.csv"})
//
// A binary that supports only a subset of backends can define an alternative
// wiring package that imports just the required ones instead of this package.
package all

import (
	_ "synthgen/internal/sink/csvfile"
	_ "synthgen/internal/sink/mssql"
	_ "synthgen/internal/sink/mysql"
	_ "synthgen/internal/sink/postgres"
	_ "synthgen/internal/sink/sqlite"
)
