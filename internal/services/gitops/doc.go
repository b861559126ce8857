// Package gitops commits working tree changes in configured repositories
// before archive runs, so the archives capture committed state.
package gitops
