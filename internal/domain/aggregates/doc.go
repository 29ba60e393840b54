// Package aggregates defines domain-facing aggregate contracts for the learning queue
// and progress engine.
//
// Each contract is a semantic write boundary: its write methods run atomically with
// respect to other writers of the same key (see Contract.LockKeys) and never take a
// lock wider than that key.
package aggregates
