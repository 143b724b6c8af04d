package query

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare query",
			raw:  "SELECT * FROM taxi_trips",
			want: "SELECT * FROM taxi_trips",
		},
		{
			name: "bare query with whitespace",
			raw:  "  \n select fare_amount from taxi_trips \n",
			want: "select fare_amount from taxi_trips",
		},
		{
			name: "single fenced block",
			raw:  "Here you go:\n```sql\nSELECT AVG(fare_amount) AS avg_fare FROM taxi_trips\n```",
			want: "SELECT AVG(fare_amount) AS avg_fare FROM taxi_trips",
		},
		{
			name: "fence without language tag",
			raw:  "```\nSELECT 1\n```",
			want: "SELECT 1",
		},
		{
			name: "second block holds the query",
			raw:  "```\njust an explanation\n```\nand the query:\n```sql\nSELECT COUNT(*) FROM taxi_trips\n```",
			want: "SELECT COUNT(*) FROM taxi_trips",
		},
		{
			name: "leading sql token without fence",
			raw:  "sql SELECT 1",
			want: "SELECT 1",
		},
		{
			name:    "fenced blocks without query keyword",
			raw:     "```\nno statement here\n```",
			wantErr: true,
		},
		{
			name:    "mutating statement",
			raw:     "DELETE FROM taxi_trips",
			wantErr: true,
		},
		{
			name:    "prose only",
			raw:     "I cannot answer that question.",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				var qerr *Error
				if !errors.As(err, &qerr) || qerr.Kind != KindInvalidShape {
					t.Fatalf("expected KindInvalidShape, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEnsureLimit(t *testing.T) {
	tests := []struct {
		name string
		q    string
		want string
	}{
		{
			name: "appends when missing",
			q:    "SELECT * FROM taxi_trips",
			want: "SELECT * FROM taxi_trips LIMIT 100",
		},
		{
			name: "strips trailing semicolon",
			q:    "SELECT * FROM taxi_trips;",
			want: "SELECT * FROM taxi_trips LIMIT 100",
		},
		{
			name: "no duplicate",
			q:    "SELECT * FROM taxi_trips LIMIT 5",
			want: "SELECT * FROM taxi_trips LIMIT 5",
		},
		{
			name: "lowercase limit detected",
			q:    "select * from taxi_trips limit 20",
			want: "select * from taxi_trips limit 20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnsureLimit(tt.q, 100); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQualifyTable(t *testing.T) {
	qualified := "project.dataset.trips"

	tests := []struct {
		name string
		q    string
		want string
	}{
		{
			name: "bare reference qualified",
			q:    "SELECT * FROM trips",
			want: "SELECT * FROM project.dataset.trips",
		},
		{
			name: "already qualified untouched",
			q:    "SELECT * FROM project.dataset.trips",
			want: "SELECT * FROM project.dataset.trips",
		},
		{
			name: "column prefix rewritten",
			q:    "SELECT trips.fare_amount FROM trips",
			want: "SELECT project.dataset.trips.fare_amount FROM project.dataset.trips",
		},
		{
			name: "no reference",
			q:    "SELECT 1",
			want: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QualifyTable(tt.q, "trips", qualified); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQualifyTableSameName(t *testing.T) {
	q := "SELECT * FROM taxi_trips"
	if got := QualifyTable(q, "taxi_trips", "taxi_trips"); got != q {
		t.Fatalf("expected unchanged query, got %q", got)
	}
}

func TestExtractPrefersKeywordBlock(t *testing.T) {
	raw := strings.Join([]string{
		"First some pseudocode:",
		"```",
		"for each trip compute fare",
		"```",
		"```sql",
		"SELECT MAX(tip_amount) FROM taxi_trips",
		"```",
	}, "\n")

	got, err := Extract(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "SELECT MAX(tip_amount) FROM taxi_trips" {
		t.Fatalf("unexpected extraction: %q", got)
	}
}
