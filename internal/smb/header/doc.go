// Package header parses and encodes the 32-byte SMB1 message header.
//
// Wire layout [MS-CIFS] 2.2.3.1 (little-endian):
//
//	Offset  Size  Field
//	0       4     Protocol       0xFF 'S' 'M' 'B'
//	4       1     Command
//	5       4     Status         NT_STATUS or DOS ErrorClass/ErrorCode
//	9       1     Flags
//	10      2     Flags2
//	12      2     PIDHigh
//	14      8     SecurityFeatures
//	22      2     Reserved
//	24      2     TID
//	26      2     PIDLow
//	28      2     UID
//	30      2     MID
package header
