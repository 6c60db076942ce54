package logging

import "time"

const logTimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	return formatTimestampLayout(ts, logTimestampLayout)
}

func formatTimestampLayout(ts time.Time, layout string) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.In(time.Local).Format(layout)
}
