package db

import (
	"context"
	"testing"
	"time"
)

func TestResolveSeriesPrefix(t *testing.T) {
	now := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		series string
		want   string
	}{
		{series: "HR-EMP-.YYYY.-", want: "HR-EMP-2026-"},
		{series: "HR-EXP-.YYYY.-", want: "HR-EXP-2026-"},
		{series: "INV-.YY.-.MM.-.DD.-", want: "INV-26-02-05-"},
		{series: "PLAIN-", want: "PLAIN-"},
	}

	for _, tt := range tests {
		t.Run(tt.series, func(t *testing.T) {
			got := resolveSeriesPrefix(tt.series, now)
			if got != tt.want {
				t.Fatalf("\nwanted:\n%q\ngot:\n%q", tt.want, got)
			}
		})
	}
}

func TestRepository_NextName(t *testing.T) {
	t.Run("should increment per prefix", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		ctx := context.Background()
		want := []string{"HR-EMP-2026-00001", "HR-EMP-2026-00002", "HR-EMP-2026-00003"}
		for _, w := range want {
			got, err := repo.NextName(ctx, "HR-EMP-.YYYY.-", baseTime)
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if got != w {
				t.Fatalf("\nwanted:\n%q\ngot:\n%q", w, got)
			}
		}

		got, err := repo.NextName(ctx, "HR-EXP-.YYYY.-", baseTime)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != "HR-EXP-2026-00001" {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", "HR-EXP-2026-00001", got)
		}
	})

	t.Run("should restart the counter in a new year", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		ctx := context.Background()
		if _, err := repo.NextName(ctx, "HR-EMP-.YYYY.-", baseTime); err != nil {
			t.Fatalf("reserving name: %v", err)
		}

		got, err := repo.NextName(ctx, "HR-EMP-.YYYY.-", baseTime.AddDate(1, 0, 0))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got != "HR-EMP-2027-00001" {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", "HR-EMP-2027-00001", got)
		}
	})
}
