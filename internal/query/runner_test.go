package query

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"taxitalk/internal/warehouse"
)

// fakeEngine records the executed query and returns canned rows.
type fakeEngine struct {
	table    string
	rows     []warehouse.Row
	err      error
	executed string
}

func (f *fakeEngine) Query(_ context.Context, q string) ([]warehouse.Row, error) {
	f.executed = q
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeEngine) Columns(context.Context) ([]string, error) { return nil, nil }
func (f *fakeEngine) Table() string                             { return f.table }
func (f *fakeEngine) Close() error                              { return nil }

func TestRunAppendsLimitAndFormats(t *testing.T) {
	engine := &fakeEngine{
		table: "taxi_trips",
		rows:  []warehouse.Row{{"avg_fare": 14.652}},
	}
	runner := NewRunner(engine, 100)

	res, err := runner.Run(context.Background(), "```sql\nSELECT AVG(fare_amount) AS avg_fare FROM taxi_trips\n```")
	if err != nil {
		t.Fatal(err)
	}

	if engine.executed != "SELECT AVG(fare_amount) AS avg_fare FROM taxi_trips LIMIT 100" {
		t.Fatalf("unexpected executed query: %q", engine.executed)
	}
	if res.Empty() {
		t.Fatal("expected rows")
	}
	if res.Formatted[0]["avg_fare"] != "$14.65" {
		t.Fatalf("unexpected formatting: %v", res.Formatted[0])
	}
}

func TestRunQualifiesBareTable(t *testing.T) {
	engine := &fakeEngine{table: "bigquery-public-data.new_york.trips"}
	runner := NewRunner(engine, 50)

	if _, err := runner.Run(context.Background(), "SELECT COUNT(*) FROM trips"); err != nil {
		t.Fatal(err)
	}

	want := "SELECT COUNT(*) FROM bigquery-public-data.new_york.trips LIMIT 50"
	if engine.executed != want {
		t.Fatalf("expected %q, got %q", want, engine.executed)
	}
}

func TestRunInvalidShapeNeverExecutes(t *testing.T) {
	engine := &fakeEngine{table: "taxi_trips"}
	runner := NewRunner(engine, 100)

	_, err := runner.Run(context.Background(), "DROP TABLE taxi_trips")
	var qerr *Error
	if !errors.As(err, &qerr) || qerr.Kind != KindInvalidShape {
		t.Fatalf("expected KindInvalidShape, got %v", err)
	}
	if engine.executed != "" {
		t.Fatalf("query must not reach the engine, got %q", engine.executed)
	}
}

func TestRunWrapsEngineError(t *testing.T) {
	engine := &fakeEngine{
		table: "taxi_trips",
		err:   fmt.Errorf("no such column: tarifa"),
	}
	runner := NewRunner(engine, 100)

	_, err := runner.Run(context.Background(), "SELECT tarifa FROM taxi_trips")
	var qerr *Error
	if !errors.As(err, &qerr) || qerr.Kind != KindEngineFailed {
		t.Fatalf("expected KindEngineFailed, got %v", err)
	}
	if !errors.Is(err, engine.err) {
		t.Fatal("engine error should be wrapped")
	}
}

func TestRunZeroRowsIsNotAnError(t *testing.T) {
	engine := &fakeEngine{table: "taxi_trips"}
	runner := NewRunner(engine, 100)

	res, err := runner.Run(context.Background(), "SELECT * FROM taxi_trips WHERE fare_amount > 1000")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Empty() {
		t.Fatal("expected empty result")
	}
}
