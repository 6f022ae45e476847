// Package smbenc provides binary encoding and decoding utilities for the SMB1
// (CIFS) wire protocol and its TRANS2 sub-protocol.
//
// The package uses an error-accumulation pattern inspired by bufio.Scanner:
// callers perform multiple read/write operations and check for errors once at
// the end, rather than after every individual operation.
//
// Reader wraps a byte slice with a position cursor and accumulates the first
// error. Once an error occurs, all subsequent reads become no-ops returning
// zero values. Every read is validated against the length of the wrapped
// slice, so offset-encoded structures (TRANS2 parameter and data offsets,
// directory entry chains) can be walked without ever dereferencing past the
// end of the received data:
//
//	r := smbenc.NewReader(payload)
//	r.Seek(int(dataOffset))
//	next := r.ReadUint32()
//	created := r.ReadUint64()
//	if r.Err() != nil {
//	    return r.Err() // handles any short read in the sequence
//	}
//
// Writer appends to a byte buffer with pre-allocated capacity. It supports
// alignment padding and backpatching, which TRANS2 requests need because the
// ByteCount field precedes the variable-length pattern it counts:
//
//	w := smbenc.NewWriter(128)
//	bctPos := w.Len()
//	w.WriteUint16(0) // ByteCount, patched below
//	w.WriteBytes(pattern)
//	w.PutUint16At(bctPos, uint16(w.Len()-bctPos-2))
//	return w.Bytes()
//
// All integer operations use little-endian byte order as required by
// [MS-CIFS] and [MS-SMB].
package smbenc
