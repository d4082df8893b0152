package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SessionPrefix, RequestPrefix, ListenerPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", prefix, id)
		}

		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Fatalf("Prefixed ID should have format 'prefix_ulid', got: %s", id)
		}
		if !IsValid(parts[1]) {
			t.Errorf("ULID part should be valid: %s", parts[1])
		}
	}
}

func TestTypedIDGeneration(t *testing.T) {
	if s := NewSessionID(); !strings.HasPrefix(s.String(), "sess_") {
		t.Errorf("SessionID should start with 'sess_', got: %s", s)
	}
	if r := NewRequestID(); !strings.HasPrefix(r.String(), "req_") {
		t.Errorf("RequestID should start with 'req_', got: %s", r)
	}
	if l := NewListenerID(); !strings.HasPrefix(l.String(), "lsn_") {
		t.Errorf("ListenerID should start with 'lsn_', got: %s", l)
	}
}

func TestNextSUIDMonotonic(t *testing.T) {
	a := NextSUID()
	b := NextSUID()
	if b <= a {
		t.Errorf("SUIDs should increase: %d then %d", a, b)
	}
}

func TestNextSUIDConcurrent(t *testing.T) {
	const workers, perWorker = 8, 250

	var mu sync.Mutex
	seen := make(map[SUID]bool, workers*perWorker)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]SUID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, NextSUID())
			}
			mu.Lock()
			for _, s := range local {
				seen[s] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique SUIDs, got %d", workers*perWorker, len(seen))
	}
}

func TestObserveSUID(t *testing.T) {
	base := NextSUID()
	ObserveSUID(base + 1000)
	if next := NextSUID(); next <= base+1000 {
		t.Errorf("NextSUID should skip observed SUID %d, got %d", base+1000, next)
	}

	cur := NextSUID()
	ObserveSUID(cur - 10)
	if next := NextSUID(); next != cur+1 {
		t.Errorf("observing an older SUID should not move the counter: want %d, got %d", cur+1, next)
	}
}
