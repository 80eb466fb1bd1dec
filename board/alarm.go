package board

import (
	"context"
	"time"
)

// NextAlarm returns the first instant after now whose seconds field is
// second.
func NextAlarm(now time.Time, second int) time.Time {
	next := now.Truncate(time.Minute).Add(time.Duration(second) * time.Second)
	if !next.After(now) {
		next = next.Add(time.Minute)
	}
	return next
}

// Alarm fires once a minute at the given second of the wall clock, the way
// a real-time clock alarm with a seconds-only filter does. The channel is
// closed when ctx is done.
func Alarm(ctx context.Context, second int) <-chan time.Time {
	out := make(chan time.Time)
	go func() {
		defer close(out)
		for {
			now := time.Now()
			t := time.NewTimer(NextAlarm(now, second).Sub(now))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case fired := <-t.C:
				select {
				case out <- fired:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
