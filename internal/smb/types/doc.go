// Package types contains SMB1 (CIFS) protocol constants used by the TRANS2
// client: command codes, TRANS2 subcommands, FIND flags, information levels,
// file attributes, NT_STATUS codes and time conversion utilities.
//
// # Type Safety
//
// Protocol values use explicit Go types (Command, Trans2Subcommand,
// InfoLevel, FileAttributes, Status) so they cannot be mixed up and print
// with human-readable names in logs.
//
// # Time Formats
//
// NT-level responses carry FILETIME values (100-nanosecond intervals since
// January 1, 1601 UTC). The legacy QUERY_INFORMATION response carries a UTIME
// (seconds since January 1, 1970) expressed in the server's local time; the
// caller adds the server time-zone offset to obtain an absolute time.
//
// # References
//
//   - [MS-CIFS] Common Internet File System (CIFS) Protocol
//   - [MS-SMB] Server Message Block (SMB) Protocol
//   - [MS-ERREF] Windows Error Codes
//   - [MS-FSCC] File System Control Codes
package types
