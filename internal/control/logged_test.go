package control

import (
	"context"
	"errors"
	"testing"

	"github.com/isabella232/moabian/internal/plant"
	"github.com/isabella232/moabian/internal/storage"
)

type memSink struct {
	records []storage.Record
	closed  bool
}

func (m *memSink) Append(r storage.Record) bool {
	m.records = append(m.records, r)
	return true
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

func TestLoggedTransparent(t *testing.T) {
	plain, _ := NewPID(75, 0.5, 45, 30, 22)
	inner, _ := NewPID(75, 0.5, 45, 30, 22)
	sink := &memSink{}
	logged := WithLogging(inner, sink)

	ctx := context.Background()
	state := plant.State{BallX: 0.03, BallY: -0.02, Detected: true}
	for i := 0; i < 10; i++ {
		wantA, wantInfo, _ := plain.Compute(ctx, state)
		gotA, gotInfo, err := logged.Compute(ctx, state)
		if err != nil {
			t.Fatal(err)
		}
		if gotA != wantA {
			t.Fatalf("tick %d: action %+v differs from %+v", i, gotA, wantA)
		}
		if gotInfo["integral_x"] != wantInfo["integral_x"] {
			t.Fatalf("tick %d: info differs", i)
		}
		state.BallX *= 0.9
	}

	if len(sink.records) != 10 {
		t.Fatalf("expected 10 records, got %d", len(sink.records))
	}
	for i, r := range sink.records {
		if r.Tick != i+1 {
			t.Errorf("record %d has tick %d", i, r.Tick)
		}
	}
}

func TestLoggedSkipsErrors(t *testing.T) {
	boom := errors.New("boom")
	sink := &memSink{}
	logged := WithLogging(Func(func(context.Context, plant.State) (plant.Action, plant.Info, error) {
		return plant.Action{}, nil, boom
	}), sink)

	if _, _, err := logged.Compute(context.Background(), plant.State{}); !errors.Is(err, boom) {
		t.Errorf("expected inner error unchanged, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Errorf("expected no record for a failed decision, got %d", len(sink.records))
	}
}

func TestLoggedCopiesInfo(t *testing.T) {
	info := plant.Info{"k": 1}
	sink := &memSink{}
	logged := WithLogging(Func(func(context.Context, plant.State) (plant.Action, plant.Info, error) {
		return plant.Action{}, info, nil
	}), sink)

	logged.Compute(context.Background(), plant.State{})
	info["k"] = 2

	if sink.records[0].Info["k"] != 1 {
		t.Error("record info must not alias the strategy's map")
	}
}

type closingStrategy struct {
	*Null
	closed bool
}

func (c *closingStrategy) Close() error {
	c.closed = true
	return nil
}

func TestLoggedCloseReleasesStrategyOnly(t *testing.T) {
	inner := &closingStrategy{Null: NewNull()}
	sink := &memSink{}
	logged := WithLogging(inner, sink)
	if err := logged.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.closed {
		t.Error("expected wrapped strategy to be closed")
	}
	if sink.closed {
		t.Error("sink is closed by its owner, not the decorator")
	}
}
