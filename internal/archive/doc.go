// Package archive persists the leader's broadcast log to a flat file
// addressed by byte position, so a Resend or SnapshotOffer can be
// served by a plain ReadAt rather than replaying in-memory state.
package archive
