package frame

import (
	"context"
	"testing"
	"time"
)

func TestRunFrameRunsBatchInOrder(t *testing.T) {
	q := NewQueue()
	var got []int

	q.Schedule(func() { got = append(got, 1) })
	q.Schedule(func() { got = append(got, 2) })

	if q.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", q.Pending())
	}

	ran := q.RunFrame()
	if ran != 2 {
		t.Errorf("RunFrame() = %d, want 2", ran)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("execution order = %v, want [1 2]", got)
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d after frame, want 0", q.Pending())
	}
}

func TestScheduleDuringFrameWaits(t *testing.T) {
	q := NewQueue()
	nested := 0

	q.Schedule(func() {
		q.Schedule(func() { nested++ })
	})

	q.RunFrame()
	if nested != 0 {
		t.Error("callback scheduled mid-frame must not run in the same frame")
	}

	q.RunFrame()
	if nested != 1 {
		t.Errorf("nested ran %d times on the following frame, want 1", nested)
	}
}

func TestRunFrameEmpty(t *testing.T) {
	q := NewQueue()
	if ran := q.RunFrame(); ran != 0 {
		t.Errorf("RunFrame() = %d on empty queue, want 0", ran)
	}
}

func TestRunDrivesFrames(t *testing.T) {
	q := NewQueue()
	done := make(chan struct{})
	q.Schedule(func() { close(done) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx, 240)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback did not run within a second")
	}
}
