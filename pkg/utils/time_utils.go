// utils/timeutil.go
package utils

import "time"

// Korea Standard Time (+09:00), the timezone depositors see on their bank statements.
var kstLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*3600)
}()

// Use explicit "seconds" variant for DB storage
func NowUnixSeconds() int64 { return time.Now().Unix() }

// Convert an epoch value in **seconds** to KST.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsKST(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(kstLoc)
}

func FormatRFC3339KST(t int64) string {
	tt := FromUnixSecondsKST(t)
	if tt.IsZero() {
		return ""
	}
	return tt.Format(time.RFC3339) // e.g. 2025-09-24T15:12:00+09:00
}
