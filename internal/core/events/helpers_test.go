package events_test

import "time"

func timeNowPlusMinutes(m int) time.Time {
	return time.Now().Add(time.Duration(m) * time.Minute)
}
