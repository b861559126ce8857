// Package sevenzip wraps the 7z command-line tool for creating and testing
// encrypted split archives.
package sevenzip
