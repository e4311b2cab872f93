// Package kiosk implements the guest side of the attendance flow: the page a
// visitor lands on after scanning an event QR code.
//
// A visitor has no account and no server-issued session. Deduplication rests
// on three legs: a locally derived device identity, a session-scoped
// submission cache used purely as an optimization, and the server as the
// single source of truth. The cache is never trusted over the server; on
// every page load the server is asked whether the device already submitted,
// and on submit the server's unique constraint decides races.
package kiosk
