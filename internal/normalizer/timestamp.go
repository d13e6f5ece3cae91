package normalizer

import "time"

// TimestampLayout renders UTC instants as ISO-8601 with an explicit +00:00
// offset. Instants with a sub-second part use TimestampLayoutMicro.
const (
	TimestampLayout      = "2006-01-02T15:04:05-07:00"
	TimestampLayoutMicro = "2006-01-02T15:04:05.000000-07:00"
)

// FormatTimestamp converts t to UTC and renders it with either no fraction
// or exactly six fractional digits. The zero time is absent.
func FormatTimestamp(t time.Time) Optional[string] {
	if t.IsZero() {
		return Absent[string]()
	}
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return Some(t.Format(TimestampLayout))
	}
	return Some(t.Format(TimestampLayoutMicro))
}

// ParseTimestamp reads a value produced by FormatTimestamp
func ParseTimestamp(s string) (time.Time, error) {
	// a fractional second after the seconds field is accepted when parsing
	return time.Parse(TimestampLayout, s)
}
