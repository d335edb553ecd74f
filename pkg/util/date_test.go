package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2025-03-03T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2025, 3, 3, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestDayFloor(t *testing.T) {
    in := time.Date(2025, 3, 3, 18, 45, 12, 500, time.UTC)
    got := DayFloor(in)
    want := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("unexpected floor %v", got)
    }
    // non-UTC inputs floor on the UTC day
    ny, _ := time.LoadLocation("America/New_York")
    in = time.Date(2025, 3, 3, 22, 0, 0, 0, ny) // 03:00 UTC next day
    got = DayFloor(in)
    want = time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("unexpected floor for zoned input %v", got)
    }
}

func TestSameDay(t *testing.T) {
    a := time.Date(2025, 3, 3, 0, 0, 1, 0, time.UTC)
    b := time.Date(2025, 3, 3, 23, 59, 59, 0, time.UTC)
    if !SameDay(a, b) {
        t.Fatalf("expected same day")
    }
    if SameDay(a, b.Add(time.Second)) {
        t.Fatalf("expected different day")
    }
}

func TestSplitList(t *testing.T) {
    got := SplitList(" btc, eth ,,sol ")
    if len(got) != 3 || got[0] != "btc" || got[1] != "eth" || got[2] != "sol" {
        t.Fatalf("unexpected parts %v", got)
    }
    if SplitList("") != nil {
        t.Fatalf("expected nil for empty input")
    }
}
