// Package core provides core types used throughout SnapDB.
//
// The package defines the column schema, row values, predicates, the
// snapshot document and the error taxonomy shared by the parser, the
// table manager, the engine and the persistence layer.
//
// # Column Types
//
// Supported column types:
//   - IntegerType: Integers (INT, INTEGER)
//   - StringType: Strings (TEXT, STRING)
//   - FloatType: Floating point numbers (FLOAT)
//   - BooleanType: Boolean values (BOOL)
//
// # Values
//
// A Row maps column names to values. A value is one of int64, float64,
// string, bool or nil (SQL NULL). Values compare with Equal, which never
// coerces across types.
//
// # Errors
//
// Every failure raised by the engine carries an ErrorKind:
//
//	if errors.Is(err, core.ErrNotFound) {
//	    // unknown table
//	}
package core
