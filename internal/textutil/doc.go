// Package textutil provides text helpers for building filesystem-safe
// names from descriptor metadata.
//
// Output filenames are assembled from series titles and episode codes that
// arrive in JSON descriptors, so every path segment passes through
// SanitizeFileName before it touches the filesystem and TruncateStem keeps
// the result inside common filesystem name limits.
package textutil
