// Package policy holds the pure decision tables of the offline cache: how
// long each collection may be served from the local store, and which
// payload rewrites apply to writes that originate offline.
package policy
