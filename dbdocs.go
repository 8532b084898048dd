// Package dbdocs installs third-party database documentation as offline,
// searchable packs. A pack is the documentation of one (database, version)
// pair: fetched from its upstream source, normalized into plain-text
// sections, split into size-bounded chunks and indexed for full-text search.
//
// This package contains domain types, interfaces and the pure algorithms
// (identity, chunking, markdown normalization) following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., bleve/, goquery/, gzip/).
package dbdocs
