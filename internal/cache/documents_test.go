package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDocuments_GetOrParse(t *testing.T) {
	c := NewDocuments[string](10, time.Minute)

	var calls int
	parse := func(s string) (string, error) {
		calls++
		return "parsed:" + s, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrParse("json_schema", "{}", parse)
		if err != nil {
			t.Fatalf("GetOrParse: %v", err)
		}
		if got != "parsed:{}" {
			t.Errorf("got %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("parser called %d times, want 1", calls)
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestDocuments_KeyIncludesFormat(t *testing.T) {
	if Key("openapi", "{}") == Key("json_schema", "{}") {
		t.Error("keys for different formats should differ")
	}
	if Key("sql_ddl", "a") != Key("sql_ddl", "a") {
		t.Error("keys should be deterministic")
	}
}

func TestDocuments_ErrorsNotCached(t *testing.T) {
	c := NewDocuments[int](10, 0)
	boom := errors.New("boom")

	var calls int
	parse := func(string) (int, error) {
		calls++
		return 0, boom
	}

	for i := 0; i < 2; i++ {
		if _, err := c.GetOrParse("sql_ddl", "CREATE", parse); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("parser called %d times, want 2", calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestDocuments_Eviction(t *testing.T) {
	c := NewDocuments[string](2, 0)
	parse := func(s string) (string, error) { return s, nil }

	for _, s := range []string{"a", "b", "c"} {
		if _, err := c.GetOrParse("protobuf", s, parse); err != nil {
			t.Fatal(err)
		}
	}

	st := c.Stats()
	if st.Size != 2 {
		t.Errorf("Size = %d, want 2", st.Size)
	}
	if st.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", st.Evictions)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after purge = %d", c.Len())
	}
}

func TestDocuments_ConcurrentParseOnce(t *testing.T) {
	c := NewDocuments[string](10, time.Minute)

	var calls atomic.Int32
	parse := func(s string) (string, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return s, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrParse("openapi", "doc", parse); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("parser called %d times, want 1", got)
	}
}

func TestDocuments_ConcurrentFailureParsesOnce(t *testing.T) {
	c := NewDocuments[string](10, time.Minute)
	boom := errors.New("boom")

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	parse := func(string) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "", boom
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetOrParse("sql_ddl", "CREATE TABLE (", parse)
			errs <- err
		}()
	}

	<-started
	// Let the remaining callers join the parse in flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("parser called %d times, want 1", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
