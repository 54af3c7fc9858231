// Package kernel provides the core domain primitives shared by the
// fulfillment domain model.
//
// It currently contains UUID, the value object used as the identity of
// orders, jobs and revisions. The type enforces construction through its
// factory functions and is immutable, so it is safe to use as a map key
// and across goroutines.
package kernel
