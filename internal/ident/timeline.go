package ident

import "fmt"

// TimeType classifies what a Timeline's int64 values mean. Sequence counts
// logical steps; DurationNs and TimestampNs are both nanosecond-resolution
// but differ in formatting (relative duration vs. absolute instant) — the
// core treats all three identically as opaque int64, per spec.
type TimeType int

const (
	TimeTypeSequence TimeType = iota
	TimeTypeDurationNs
	TimeTypeTimestampNs
)

func (t TimeType) String() string {
	switch t {
	case TimeTypeSequence:
		return "sequence"
	case TimeTypeDurationNs:
		return "duration"
	case TimeTypeTimestampNs:
		return "timestamp"
	default:
		return fmt.Sprintf("TimeType(%d)", int(t))
	}
}

// Timeline is a named time axis. A recording typically has several
// (log_time, frame_nr, and domain-specific axes); the store indexes
// chunks independently per timeline.
type Timeline struct {
	Name string
	Type TimeType
}

// NewTimeline constructs a Timeline.
func NewTimeline(name string, typ TimeType) Timeline {
	return Timeline{Name: name, Type: typ}
}

func (tl Timeline) String() string {
	return tl.Name
}
