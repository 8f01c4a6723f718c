// Package host defines the contract of the text-editing widget that owns
// the markup text, and provides Buffer, an in-memory implementation used by
// the command line tools and tests.
package host
