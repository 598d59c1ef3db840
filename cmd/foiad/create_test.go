package main

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	got, err := parseDay("2024-03-15")
	if err != nil {
		t.Fatalf("parseDay: %v", err)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDay_Empty(t *testing.T) {
	got, err := parseDay("")
	if err != nil || !got.IsZero() {
		t.Errorf("empty input should be zero time, got %v, %v", got, err)
	}
}

func TestParseDay_Invalid(t *testing.T) {
	if _, err := parseDay("03/15/2024"); err == nil {
		t.Error("want error for non ISO date")
	}
}
