package types

import "time"

// Windows FILETIME epoch: January 1, 1601 UTC
// Difference from Unix epoch (January 1, 1970) in 100-nanosecond intervals
const filetimeUnixDiff = 116444736000000000

// TimeToFiletime converts Go time.Time to Windows FILETIME
// FILETIME is a 64-bit value representing the number of 100-nanosecond intervals
// since January 1, 1601 UTC
func TimeToFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100) + filetimeUnixDiff
}

// FiletimeToTime converts Windows FILETIME to Go time.Time.
// Zero and pre-1970 values map to the zero time.
func FiletimeToTime(ft uint64) time.Time {
	if ft == 0 || ft < filetimeUnixDiff {
		return time.Time{}
	}
	nsec := int64(ft-filetimeUnixDiff) * 100
	return time.Unix(0, nsec).UTC()
}

// UnixSecondsToTime converts a UTIME (seconds since the Unix epoch) to Go
// time.Time. Zero maps to the zero time.
func UnixSecondsToTime(secs uint64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0).UTC()
}

// AdjustUTime applies a server time-zone offset to a legacy UTIME value.
// The result is clamped at zero.
func AdjustUTime(utime uint32, offset time.Duration) uint64 {
	adjusted := int64(utime) + int64(offset/time.Second)
	if adjusted < 0 {
		return 0
	}
	return uint64(adjusted)
}
