// Package services contains domain services that coordinate behavior across
// aggregates without belonging to any single one.
package services
