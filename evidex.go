// Package evidex provides a local, provenance-preserving document index.
// It ingests page-structured documents, flat text and scanned images from a
// directory, extracts page text and named entities, and serves keyword and
// entity lookups where every result resolves to an exact file, page and
// offset range.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, tesseract/, poppler/).
package evidex
