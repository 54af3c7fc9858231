// Package job contains the Job aggregate, a durable queue entry that drives
// one order through the fulfillment pipeline with a bounded retry budget.
package job
