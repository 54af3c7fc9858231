// Package order contains the Order aggregate and its value objects: the
// purchased Tier with its price, generation budget and revision credits,
// the customer Contact, and the fulfillment Status state machine.
package order
