package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
)

func rec(kind model.Kind, line string) Record {
	return Record{Kind: kind, Line: []byte(line)}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	// Test empty queue
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	// Test enqueue
	if !q.Enqueue(ctx, rec(model.KindRun, `{"id":"000000z1"}`)) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	// Test dequeue
	recordChan := q.Dequeue(ctx)
	record := <-recordChan
	if record.Kind != model.KindRun {
		t.Errorf("expected run record, got %v", record.Kind)
	}
	if string(record.Line) != `{"id":"000000z1"}` {
		t.Errorf("unexpected line %q", record.Line)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, rec(model.KindGame, `{"g":1}`)) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, rec(model.KindGame, `{"g":2}`)) {
		t.Error("expected enqueue to succeed")
	}

	// Try to enqueue when full
	if q.Enqueue(ctx, rec(model.KindGame, `{"g":3}`)) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2000))
	ctx := context.Background()
	numGoroutines := 10
	numRecords := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numRecords; j++ {
				line := fmt.Sprintf(`{"producer":%d,"seq":%d}`, id, j)
				if !q.Enqueue(ctx, rec(model.KindUser, line)) {
					t.Errorf("enqueue failed for producer %d", id)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != numGoroutines*numRecords {
		t.Errorf("expected %d records, got %d", numGoroutines*numRecords, l)
	}

	// Drain everything
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var consumed int
	for range q.Dequeue(ctx) {
		consumed++
	}
	if consumed != numGoroutines*numRecords {
		t.Errorf("expected to consume %d records, got %d", numGoroutines*numRecords, consumed)
	}
	if !q.Drained() {
		t.Error("expected queue to be drained")
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("queue should not start closed")
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("queue should be closed")
	}

	// Enqueue after close fails
	if q.Enqueue(ctx, rec(model.KindRun, `{}`)) {
		t.Error("expected enqueue to fail after close")
	}

	// Closing twice is a no-op
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	// Dequeue channel drains and closes
	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected closed dequeue channel")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel did not close")
	}
}
