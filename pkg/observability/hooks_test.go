package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "d2")
	r.OnRenderComplete(ctx, "d2", 3, time.Second, nil)
	r.OnBuildStart(ctx, 12)
	r.OnBuildComplete(ctx, 4, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/render")
	h.OnResponse(ctx, "POST", "/render", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnRenderComplete(ctx, "d2", 3, 10*time.Millisecond, nil)
	h.OnRenderComplete(ctx, "d2", 0, time.Millisecond, errors.New(errors.ErrCodeParse, "bad"))
	h.OnCacheHit(ctx, "render")
	h.OnCacheSet(ctx, "render", 100)
	h.OnBuildComplete(ctx, 2, time.Second, nil)
	h.OnResponse(ctx, "GET", "/health", 200, time.Millisecond)

	if got := testutil.ToFloat64(h.renders.WithLabelValues("d2", "ok")); got != 1 {
		t.Errorf("renders{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.renders.WithLabelValues("d2", "PARSE_ERROR")); got != 1 {
		t.Errorf("renders{PARSE_ERROR} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.views.WithLabelValues("d2")); got != 3 {
		t.Errorf("views = %v, want 3", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes.WithLabelValues("render")); got != 100 {
		t.Errorf("cache bytes = %v, want 100", got)
	}

	expected := `
# HELP mdbook_svg_http_requests_total Total number of preview server requests.
# TYPE mdbook_svg_http_requests_total counter
mdbook_svg_http_requests_total{method="GET",route="/health",status="200"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "mdbook_svg_http_requests_total"); err != nil {
		t.Error(err)
	}
}

// Test implementations
type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
