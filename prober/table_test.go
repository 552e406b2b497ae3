package prober

import (
	"errors"
	"sync"
	"testing"
)

func TestTableInsertDuplicate(t *testing.T) {
	table := NewTable()
	if _, err := table.Insert("10.0.0.1#0"); err != nil {
		t.Fatalf("first Insert() error: %v", err)
	}
	if _, err := table.Insert("10.0.0.1#0"); !errors.Is(err, ErrDuplicateProbe) {
		t.Errorf("second Insert() error = %v, want ErrDuplicateProbe", err)
	}
	// A different seq for the same address is a distinct key.
	if _, err := table.Insert("10.0.0.1#1"); err != nil {
		t.Errorf("Insert() with different seq error: %v", err)
	}
	if got, want := table.Pending(), 2; got != want {
		t.Errorf("Pending() = %d, want %d", got, want)
	}
}

func TestTablePopOnce(t *testing.T) {
	table := NewTable()
	want, err := table.Insert("10.0.0.1#0")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := table.Pop("10.0.0.1#0")
	if !ok || got != want {
		t.Fatalf("Pop() = (%v, %v), want the inserted handle", got, ok)
	}
	if _, ok := table.Pop("10.0.0.1#0"); ok {
		t.Error("second Pop() succeeded, want miss")
	}
	if got := table.Pending(); got != 0 {
		t.Errorf("Pending() = %d after pop, want 0", got)
	}
}

func TestTablePopRace(t *testing.T) {
	table := NewTable()
	if _, err := table.Insert("192.0.2.1#5"); err != nil {
		t.Fatal(err)
	}

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := table.Pop("192.0.2.1#5"); ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var n int
	for range wins {
		n++
	}
	if n != 1 {
		t.Errorf("%d racing Pops won, want exactly 1", n)
	}
}

func TestTableReinsertAfterPop(t *testing.T) {
	table := NewTable()
	if _, err := table.Insert("10.0.0.1#0"); err != nil {
		t.Fatal(err)
	}
	table.Pop("10.0.0.1#0")
	if _, err := table.Insert("10.0.0.1#0"); err != nil {
		t.Errorf("Insert() after Pop error: %v, want key reusable", err)
	}
}
