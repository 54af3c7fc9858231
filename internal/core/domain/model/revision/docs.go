// Package revision contains the Revision entity: a credit-paid change
// request against a completed order, processed by its own worker.
package revision
