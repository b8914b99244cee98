// Package records models identifier-keyed record collections and converts
// them between the export JSON shape and a flat CSV table.
//
// Field values are a closed variant (Value): string, number, boolean, null,
// ordered list, or ordered map. Numbers keep their original JSON text so a
// JSON round trip is byte-for-byte stable. Field and record order are kept
// exactly as first seen; a repeated key or id replaces the earlier value in
// place.
//
// The CSV table puts id and createdTime first and the union of all other
// field names after them in lexicographic order. Multi-line text uses the
// csvcodec " | " convention, arrays and objects are written as compact JSON,
// and empty cells are left out of the rebuilt field maps.
package records
