// Package session provides trans2.Session implementations.
//
// Conn drives an already negotiated SMB1 connection: dialect negotiation,
// authentication and tree connect happen elsewhere, and the caller supplies
// their outcome (user id, NT capability, server time zone) in Config.
//
// Replay serves recorded response frames from a YAML capture so that
// listings and stat results can be reproduced offline.
package session
