package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "23:59", want: "23:59"},
		{in: " 12:30 ", want: "12:30"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Fatalf("ParseTimeOfDay(%q) error = %v, want ErrInvalidTime", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) unexpected error: %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestTimeOfDay_Arithmetic(t *testing.T) {
	start := NewTimeOfDay(9, 0)
	if got := start.Add(90).String(); got != "10:30" {
		t.Errorf("Add(90) = %s, want 10:30", got)
	}
	if start.Minutes() != 540 {
		t.Errorf("Minutes() = %d, want 540", start.Minutes())
	}

	day := time.Date(2025, 3, 10, 17, 45, 0, 0, time.UTC)
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if got := start.On(day); !got.Equal(want) {
		t.Errorf("On() = %s, want %s", got, want)
	}
	if got := TimeOfDayOf(day).String(); got != "17:45" {
		t.Errorf("TimeOfDayOf() = %s, want 17:45", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(d) != "2025-03-10" {
		t.Errorf("FormatDate() = %s", FormatDate(d))
	}

	for _, bad := range []string{"2025-13-01", "10/03/2025", "2025-02-30", ""} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	want := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2025-03-10T09:30:00", want: want},
		{in: "2025-03-10T09:30", want: want},
		{in: "2025-03-10 09:30:00", want: want},
		{in: "2025-03-10 09:30", want: want},
		{in: "2025-03-10T09:30:00+02:00", want: want},
		{in: "2025-03-10T09:30:00Z", want: want},
		{in: "2025-03-10T09:30:00.000", want: want},
		{in: "2025-03-10T09", want: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{in: "2025-03-10 09", want: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{in: "2025-03-10", want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateTime(tt.in)
			if err != nil {
				t.Fatalf("ParseDateTime(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseDateTime(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "tomorrow", "2025-03-10T25:00", "10-03-2025 09:30"} {
		if _, err := ParseDateTime(bad); !errors.Is(err, ErrInvalidDateTime) {
			t.Errorf("ParseDateTime(%q) error = %v, want ErrInvalidDateTime", bad, err)
		}
	}
}

func TestNaive_KeepsWallClock(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2025, 3, 10, 9, 45, 0, 0, loc)

	got := Naive(in)
	if got.Hour() != 9 || got.Minute() != 45 || got.Location() != time.UTC {
		t.Errorf("Naive() = %s, want 09:45 UTC wall clock", got)
	}
}

func TestDays(t *testing.T) {
	start := time.Date(2025, 2, 27, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	var got []string
	for d := range Days(start, end) {
		got = append(got, FormatDate(d))
	}

	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if len(got) != len(want) {
		t.Fatalf("Days() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Days()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if n := DaysBetween(start, end); n != 4 {
		t.Errorf("DaysBetween() = %d, want 4", n)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]time.Weekday{
		"Monday": time.Monday,
		"friday": time.Friday,
		"SUN":    time.Sunday,
		" wed ":  time.Wednesday,
	}
	for in, want := range tests {
		got, err := ParseWeekday(in)
		if err != nil {
			t.Errorf("ParseWeekday(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseWeekday(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseWeekday("Funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("ParseWeekday(Funday) error = %v, want ErrInvalidWeekday", err)
	}
}
