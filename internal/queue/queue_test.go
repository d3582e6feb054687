package queue

import (
	"sync"
	"testing"
)

type row struct {
	Index int
	Actor string
}

func TestQueue_New(t *testing.T) {
	q := New[row]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[row]()

	q.Push(row{Index: 1, Actor: "Y'shtola"})
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(row{Index: 2}, row{Index: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
	if q.Empty() {
		t.Error("expected non-empty queue")
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2})

	items := q.GetAndEmpty()
	if len(items) != 2 || items[0].Index != 1 || items[1].Index != 2 {
		t.Errorf("unexpected items %+v", items)
	}
	if !q.Empty() {
		t.Error("expected empty queue after GetAndEmpty")
	}

	// later pushes must not alias the returned slice
	q.Push(row{Index: 9})
	if items[0].Index != 1 {
		t.Errorf("returned slice was modified: %+v", items)
	}

	if got := New[row]().GetAndEmpty(); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestQueue_Requeue(t *testing.T) {
	q := New[row]()
	q.Push(row{Index: 1}, row{Index: 2})

	taken := q.GetAndEmpty()
	q.Push(row{Index: 3})
	q.Requeue(taken)

	items := q.GetAndEmpty()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []int{1, 2, 3} {
		if items[i].Index != want {
			t.Errorf("item %d: expected index %d, got %d", i, want, items[i].Index)
		}
	}

	q.Requeue(nil)
	if !q.Empty() {
		t.Error("requeue of nothing should leave the queue empty")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[row]()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(row{Index: g*100 + i})
			}
		}(g)
	}
	wg.Wait()

	if q.Len() != 800 {
		t.Errorf("expected 800 items, got %d", q.Len())
	}
}

func TestQueue_ConcurrentPushAndDrain(t *testing.T) {
	q := New[row]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	drained := 0

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			q.Push(row{Index: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			n := len(q.GetAndEmpty())
			mu.Lock()
			drained += n
			mu.Unlock()
		}
	}()
	wg.Wait()

	drained += len(q.GetAndEmpty())
	if drained != 500 {
		t.Errorf("expected 500 drained items, got %d", drained)
	}
}
