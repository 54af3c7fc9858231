// Package event contains the append-only timeline entry recorded for every
// order state transition and external side effect.
package event
