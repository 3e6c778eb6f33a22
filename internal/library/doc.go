// Package library implements the client side of the library/engine
// reconnection protocol: a LibraryPoller that bootstraps a connection
// to one of a set of engine endpoints, follows NotLeader redirects,
// and correlates outbound requests to their replies with a
// per-request deadline.
package library
