package ident

import "testing"

func TestTimeTypeString(t *testing.T) {
	tests := []struct {
		typ  TimeType
		want string
	}{
		{TimeTypeSequence, "sequence"},
		{TimeTypeDurationNs, "duration"},
		{TimeTypeTimestampNs, "timestamp"},
		{TimeType(99), "TimeType(99)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Fatalf("TimeType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestNewTimeline(t *testing.T) {
	tl := NewTimeline("frame_nr", TimeTypeSequence)
	if tl.Name != "frame_nr" || tl.Type != TimeTypeSequence {
		t.Fatalf("unexpected timeline: %+v", tl)
	}
	if tl.String() != "frame_nr" {
		t.Fatalf("String() = %q, want %q", tl.String(), "frame_nr")
	}
}
