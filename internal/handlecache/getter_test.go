package handlecache

import (
	"errors"
	"testing"

	"github.com/1broseidon/winprobe/internal/platform"
	"github.com/1broseidon/winprobe/internal/platform/platformtest"
)

func TestGetter_CachesLiveHandles(t *testing.T) {
	fake := platformtest.NewFake()
	h := fake.Create(platformtest.FakeWindow{Class: "Notepad", Title: "a.txt - Notepad"})
	g := NewGetter(fake, fake)

	for i := 0; i < 3; i++ {
		got, err := g.Resolve("Notepad", "a.txt - Notepad")
		if err != nil {
			t.Fatalf("resolve #%d: %v", i, err)
		}
		if got != h {
			t.Fatalf("resolve #%d = %s, want %s", i, got, h)
		}
	}
	if fake.FindCalls() != 1 {
		t.Fatalf("FindWindow called %d times, want 1", fake.FindCalls())
	}
}

func TestGetter_InvalidQuery(t *testing.T) {
	fake := platformtest.NewFake()
	g := NewGetter(fake, fake)

	if _, err := g.Resolve("", ""); !errors.Is(err, platform.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
	if fake.FindCalls() != 0 || fake.ExistCalls() != 0 {
		t.Fatalf("invalid query reached the backend")
	}
}

func TestGetter_ReplacesDeadHandle(t *testing.T) {
	fake := platformtest.NewFake()
	old := fake.Create(platformtest.FakeWindow{Class: "Notepad"})
	g := NewGetter(fake, fake)

	if _, err := g.Resolve("Notepad", ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	fake.Destroy(old)

	if _, err := g.Resolve("Notepad", ""); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if g.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", g.Len())
	}

	replacement := fake.Create(platformtest.FakeWindow{Class: "Notepad"})
	got, err := g.Resolve("Notepad", "")
	if err != nil || got != replacement {
		t.Fatalf("resolve = %s, %v; want %s", got, err, replacement)
	}
}

func TestGetter_IsUnbounded(t *testing.T) {
	fake := platformtest.NewFake()
	g := NewGetter(fake, fake)

	const n = DefaultCapacity + 10
	for i := 0; i < n; i++ {
		title := string(rune('A'+i%26)) + string(rune('a'+i/26))
		fake.Create(platformtest.FakeWindow{Title: title})
		if _, err := g.Resolve("", title); err != nil {
			t.Fatalf("resolve %q: %v", title, err)
		}
	}
	if g.Len() != n {
		t.Fatalf("Len() = %d, want %d", g.Len(), n)
	}
}
