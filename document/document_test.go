package document

import (
	"os"
	"sync"
	"testing"

	"github.com/zhubert/checkin/logger"
)

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}

func TestRegistry_OpenKeepsID(t *testing.T) {
	r := NewRegistry()
	first := r.Open("src/a.go", []byte("package a"))
	second := r.Open("src/./a.go", []byte("package a // edited"))

	if first.ID != second.ID {
		t.Error("re-opening a path should keep the buffer ID")
	}
	if first.Binary {
		t.Error("text content detected as binary")
	}

	r.Close("src/a.go")
	if _, ok := r.Get("src/a.go"); ok {
		t.Error("buffer should be gone after Close")
	}
}

func TestRegistry_BinaryDetection(t *testing.T) {
	r := NewRegistry()
	buf := r.Open("logo.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})
	if !buf.Binary {
		t.Error("content with NUL byte should be binary")
	}
}

func TestGuard_MarkSkipsBinaryAndUnknown(t *testing.T) {
	r := NewRegistry()
	r.Open("a.go", []byte("text"))
	r.Open("b.bin", []byte{0})
	g := NewGuard(r)

	lease := g.Mark("req-1", []string{"a.go", "b.bin", "missing.go"})
	if lease.Len() != 1 {
		t.Fatalf("lease holds %d buffers, want 1", lease.Len())
	}
	if !g.VetoSave("a.go") {
		t.Error("a.go should be vetoed while committing")
	}
	if g.VetoSave("b.bin") {
		t.Error("binary buffer should not be marked")
	}

	lock, ok := g.IsBeingCommitted("a.go")
	if !ok || lock.Owner != "req-1" {
		t.Errorf("IsBeingCommitted = %+v, %v", lock, ok)
	}
}

func TestLease_ReleaseIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Open("a.go", []byte("text"))
	g := NewGuard(r)

	lease := g.Mark("req-1", []string{"a.go"})
	lease.Release()
	if g.Len() != 0 {
		t.Fatalf("guard still holds %d locks", g.Len())
	}

	// A second request marks the same buffer; releasing the first lease
	// again must not clear it.
	other := g.Mark("req-2", []string{"a.go"})
	lease.Release()
	if !g.VetoSave("a.go") {
		t.Error("second Release cleared another request's marker")
	}
	other.Release()
	if g.Len() != 0 {
		t.Error("markers left after releasing every lease")
	}
}

func TestGuard_ConflictingOwners(t *testing.T) {
	r := NewRegistry()
	r.Open("a.go", []byte("text"))
	g := NewGuard(r)

	first := g.Mark("req-1", []string{"a.go"})
	second := g.Mark("req-2", []string{"a.go"})
	defer first.Release()

	if second.Len() != 0 {
		t.Error("a buffer held by another request should not join the lease")
	}
	second.Release()
	if lock, _ := g.IsBeingCommitted("a.go"); lock.Owner != "req-1" {
		t.Errorf("owner = %q, want req-1", lock.Owner)
	}
}

func TestLease_DeferredReleaseAfterPanic(t *testing.T) {
	r := NewRegistry()
	r.Open("a.go", []byte("text"))
	g := NewGuard(r)

	func() {
		defer func() { _ = recover() }()
		lease := g.NewLease("req-1")
		defer lease.Release()
		lease.Mark([]string{"a.go"})
		panic("fault after marking")
	}()

	if g.Len() != 0 {
		t.Errorf("markers left after panic: %v", g.Locks())
	}
}

func TestLease_MarkAfterReleaseIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Open("a.go", []byte("text"))
	g := NewGuard(r)

	lease := g.NewLease("req-1")
	lease.Release()
	lease.Mark([]string{"a.go"})
	if g.Len() != 0 {
		t.Error("marking through a released lease should do nothing")
	}
}

func TestGuard_NilStore(t *testing.T) {
	g := NewGuard(nil)
	lease := g.Mark("req", []string{"a.go"})
	lease.Release()
	if g.Len() != 0 {
		t.Error("nil store should mark nothing")
	}
}

func TestGuard_ConcurrentRequests(t *testing.T) {
	r := NewRegistry()
	paths := []string{"a.go", "b.go", "c.go", "d.go"}
	for _, p := range paths {
		r.Open(p, []byte("text"))
	}
	g := NewGuard(r)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			lease := g.Mark(string(rune('A'+n)), paths)
			defer lease.Release()
			r.Open(paths[n%len(paths)], []byte("edited"))
		}(i)
	}
	wg.Wait()

	if g.Len() != 0 {
		t.Errorf("markers left after all leases released: %v", g.Locks())
	}
}
