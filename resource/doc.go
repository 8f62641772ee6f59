// Package resource bounds the compute and IO footprint of a pipeline run.
//
// A Controller hands out worker slots for CPU-heavy stages (embedding,
// scoring) and throttles the byte rate of artifact uploads. A nil
// Controller is valid and enforces nothing, so callers can thread one
// through unconditionally.
package resource
