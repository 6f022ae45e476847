// Package trans2 implements the client side of the SMB1 TRANSACTION2
// sub-protocol: directory enumeration with FIND_FIRST2/FIND_NEXT2, per-path
// metadata with QUERY_PATH_INFORMATION, and the legacy QUERY_INFORMATION
// fallback for servers without the NT feature set.
//
// # Architecture
//
//	Client.Find ──────────┐
//	Client.QueryPathInfo ─┼──> Session.Send / Session.Recv
//	Client.Fstat ─────────┘            │
//	                                   v
//	                             reassembler (multi-frame responses)
//	                                   │
//	                                   v
//	                             DecodeEntries / info decoders ──> []FileRecord
//
// A Client owns no connection state beyond the tree id; framing, message ids
// and capability negotiation belong to the Session implementation (see
// package session). A Session must not be shared by concurrent calls.
//
// # Errors
//
// All failures are returned as *Error carrying an ErrorCode. A server-side
// EA error offset during enumeration is not an error: the listing collected
// so far is returned.
package trans2
