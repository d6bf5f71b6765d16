package render

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_Idempotence(t *testing.T) {
	fsys := layoutFiles()
	engine := &countingEngine{Engine: newHTMLEngine("{{", "}}", builtinFuncs())}
	p := newTestPipeline(t, fsys, noLayout, WithEngine(engine))

	for i := 0; i < 2; i++ {
		if got := compose(t, p, "index.html", Context{"title": i}); got != fmt.Sprintf("V:%d", i) {
			t.Fatalf("render %d: unexpected output %q", i, got)
		}
	}
	if n := fsys.count("index.html"); n != 1 {
		t.Errorf("expected 1 read with caching, got %d", n)
	}
	if n := engine.compiles.Load(); n != 1 {
		t.Errorf("expected 1 compile with caching, got %d", n)
	}
	if n := p.CachedViews(); n != 1 {
		t.Errorf("expected 1 cached view, got %d", n)
	}
}

func TestCache_Disabled(t *testing.T) {
	fsys := layoutFiles()
	engine := &countingEngine{Engine: newHTMLEngine("{{", "}}", builtinFuncs())}
	p := newTestPipeline(t, fsys, func(c *Config) {
		c.Layout = ""
		c.Cache = false
	}, WithEngine(engine))

	for i := 0; i < 3; i++ {
		compose(t, p, "index.html", Context{"title": "X"})
	}
	if n := fsys.count("index.html"); n != 3 {
		t.Errorf("expected a read per render without caching, got %d", n)
	}
	if n := engine.compiles.Load(); n != 3 {
		t.Errorf("expected a compile per render without caching, got %d", n)
	}
	if n := p.CachedViews(); n != 0 {
		t.Errorf("expected an empty cache, got %d entries", n)
	}
}

func TestCache_PartialsReadOncePerCompile(t *testing.T) {
	fsys := newCountingFS(files(
		"index.html", `{{ partial('p.html') }}`,
		"p.html", "P",
	))
	p := newTestPipeline(t, fsys, noLayout)
	for i := 0; i < 3; i++ {
		compose(t, p, "index.html", nil)
	}
	if n := fsys.count("p.html"); n != 1 {
		t.Errorf("expected the partial to be read once, got %d", n)
	}
}

func TestCache_FailedReadIsNotCached(t *testing.T) {
	fsys := newCountingFS(files())
	p := newTestPipeline(t, fsys, noLayout)
	for i := 0; i < 2; i++ {
		if _, err := p.Compose(nil, nil, "late.html", nil); err == nil {
			t.Fatal("expected an error for a missing view")
		}
	}
	fsys.files["late.html"] = files("late.html", "now")["late.html"]
	if got := compose(t, p, "late.html", nil); got != "now" {
		t.Errorf("expected the view to be found once it exists, got %q", got)
	}
}

func TestCache_ConcurrentRenders(t *testing.T) {
	p := newTestPipeline(t, layoutFiles(), nil)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := p.Compose(nil, nil, "index.html", Context{"title": i})
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf("L:V:%d", i); string(out) != want {
				errs <- fmt.Errorf("expected %q, got %q", want, out)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if n := p.CachedViews(); n != 2 {
		t.Errorf("expected view and layout to be cached, got %d entries", n)
	}
}
