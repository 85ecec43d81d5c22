package ci

import (
	"context"
	"testing"

	"github.com/riverhollow/wtr/internal/cicache"
)

type fakeProvider struct {
	calls  int
	status Status
	err    error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Status(ctx context.Context, branch, headSHA string) (Status, error) {
	f.calls++
	return f.status, f.err
}

func TestCachedStatusFuncMissesThenHitsCache(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeProvider{status: Status{Status: "passing"}}
	fn := CachedStatusFunc(fake, dir, dir)

	status, ok := fn(context.Background(), "feature-a", "sha1")
	if !ok || status != "passing" {
		t.Fatalf("expected passing/true, got %q/%v", status, ok)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", fake.calls)
	}

	status2, ok2 := fn(context.Background(), "feature-a", "sha1")
	if !ok2 || status2 != "passing" {
		t.Fatalf("expected cached passing/true, got %q/%v", status2, ok2)
	}
	if fake.calls != 1 {
		t.Errorf("expected cache hit to skip provider, got %d calls", fake.calls)
	}
}

func TestCachedStatusFuncMissesOnHeadChange(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeProvider{status: Status{Status: "passing"}}
	fn := CachedStatusFunc(fake, dir, dir)

	fn(context.Background(), "feature-a", "sha1")
	fn(context.Background(), "feature-a", "sha2")
	if fake.calls != 2 {
		t.Errorf("expected a fresh provider call once head moved, got %d calls", fake.calls)
	}
}

func TestCachedStatusFuncFailsSoftOnProviderError(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeProvider{err: errNetwork}
	fn := CachedStatusFunc(fake, dir, dir)

	status, ok := fn(context.Background(), "feature-a", "sha1")
	if ok || status != "" {
		t.Errorf("expected status unavailable on provider error, got %q/%v", status, ok)
	}
	if cicache.Load(dir, "feature-a") != nil {
		t.Error("expected no cache entry written on provider error")
	}
}

var errNetwork = &networkError{}

type networkError struct{}

func (*networkError) Error() string { return "network error" }
