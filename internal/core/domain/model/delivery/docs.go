// Package delivery contains the Delivery entity, an audit record of one
// send over one channel, and the channel fallback order.
package delivery
