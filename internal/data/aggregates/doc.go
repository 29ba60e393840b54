// Package aggregates implements the learning-queue aggregate contracts.
//
// Each aggregate composes table repos from internal/data/repos and owns the
// transaction boundary of its writes. Writes started while a transaction is already
// stored on the context join it, so the queue service can run one learner attempt
// as a single unit of work.
package aggregates
