// Package normalisers extracts text from uploaded files. Each normaliser
// knows how to read one family of MIME types; the Registry dispatches a
// raw document to the highest-priority normaliser that accepts it.
package normalisers
