package keywords

import (
	"context"
	"errors"
	"testing"

	"github.com/redscout/redscout/internal/storage/kv"
)

func TestAddNormalizesAndIsIdempotent(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	kw, err := r.Add(ctx, "  GoLang ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if kw.Name != "golang" {
		t.Fatalf("name: %q", kw.Name)
	}
	if kw.CreatedAtMs == 0 {
		t.Fatalf("createdAt unset")
	}

	again, err := r.Add(ctx, "golang")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if again.CreatedAtMs != kw.CreatedAtMs {
		t.Fatalf("re-add changed creation time: %d != %d", again.CreatedAtMs, kw.CreatedAtMs)
	}

	list, _ := r.List(ctx)
	if len(list) != 1 {
		t.Fatalf("list: %+v", list)
	}
}

func TestAddRejectsBadNames(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "a/b", "a*b"} {
		if _, err := r.Add(ctx, raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("add %q: %v", raw, err)
		}
	}
}

func TestListSorted(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()
	for _, name := range []string{"zig", "golang", "rust"} {
		if _, err := r.Add(ctx, name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, 0, len(list))
	for _, kw := range list {
		got = append(got, kw.Name)
	}
	want := []string{"golang", "rust", "zig"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: %v", got)
		}
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry(kv.NewMemoryStore())
	ctx := context.Background()
	_, _ = r.Add(ctx, "golang")

	ok, err := r.Remove(ctx, "GOLANG")
	if err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	ok, err = r.Remove(ctx, "golang")
	if err != nil || ok {
		t.Fatalf("second remove: ok=%v err=%v", ok, err)
	}
	list, _ := r.List(ctx)
	if len(list) != 0 {
		t.Fatalf("list after remove: %+v", list)
	}
}
