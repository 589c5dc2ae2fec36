// Package loader discovers text files beneath a repository root and loads
// them as documents.
//
// Files are matched with doublestar patterns relative to the root, sniffed
// for binary content, and decoded as UTF-8. A file that cannot be loaded is
// reported as a *LoadError and left out of the result; only a missing root
// or an empty match set fails the whole load.
package loader
