package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeDefault(t *testing.T) {
    def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
    got := ParseTimeDefault("", def)
    if !got.Equal(def) {
        t.Fatalf("expected default")
    }
}
func TestDateYYYYMMDD(t *testing.T) {
    want := time.Now().Format("20060102")
    if got := DateYYYYMMDD(0); got != want {
        t.Fatalf("expected %s, got %s", want, got)
    }
    want5 := time.Now().AddDate(0, 0, -5).Format("20060102")
    if got := DateYYYYMMDD(5); got != want5 {
        t.Fatalf("expected %s, got %s", want5, got)
    }
}

func TestDateDash(t *testing.T) {
    want := time.Now().Format("2006-01-02")
    if got := DateDash(0); got != want {
        t.Fatalf("expected %s, got %s", want, got)
    }
}
