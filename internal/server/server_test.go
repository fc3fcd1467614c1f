package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mdbook-svg/pkg/diagram"
	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/observability"
	"github.com/matzehuels/mdbook-svg/pkg/renderer"
)

// fakeRenderer renders "layers" as a root with two layers, fails on "bad"
// and renders anything else as one board echoing the source.
func fakeRenderer() renderer.Renderer {
	return renderer.Func{Name: "fake", Fn: func(_ context.Context, src string) (*diagram.Result, error) {
		src = strings.TrimSpace(src)
		switch src {
		case "bad":
			return nil, errors.New(errors.ErrCodeRender, "syntax error")
		case "layers":
			return &diagram.Result{
				Content: "<svg>root</svg>",
				Layers: []*diagram.Result{
					{Name: "a", Content: "<svg>a</svg>"},
					{Name: "b", Content: "<svg>b</svg>"},
				},
			}, nil
		}
		return diagram.Leaf("", "<svg>"+src+"</svg>"), nil
	}}
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Marker == "" {
		opts.Marker = "d2"
	}
	s, err := New(fakeRenderer(), opts, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewRejectsBadMarker(t *testing.T) {
	if _, err := New(fakeRenderer(), Options{Marker: ""}, nil); err == nil {
		t.Error("New() with empty marker should fail")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["backend"] != "fake" {
		t.Errorf("body = %v", body)
	}
}

func TestRenderPlainText(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/render", "text/plain", "layers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}

	wantNames := []string{"diagram", "diagram_layers_0", "diagram_layers_1"}
	if len(out.Views) != len(wantNames) {
		t.Fatalf("got %d views, want %d", len(out.Views), len(wantNames))
	}
	for i, want := range wantNames {
		if out.Views[i].Name != want {
			t.Errorf("view %d name = %q, want %q", i, out.Views[i].Name, want)
		}
	}
	if out.Views[1].Title != "a" {
		t.Errorf("layer title = %q, want %q", out.Views[1].Title, "a")
	}
}

func TestRenderJSON(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/render", "application/json", `{"source":"x -> y","name":"My Graph"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Views) != 1 {
		t.Fatalf("got %d views, want 1", len(out.Views))
	}
	v := out.Views[0]
	if v.Name != "my_graph" || v.Title != "My Graph" || v.Content != "<svg>x -> y</svg>" {
		t.Errorf("view = %+v", v)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, Options{})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    errors.Code
	}{
		{"empty source", "text/plain", "  ", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad json", "application/json", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"render failure", "text/plain", "bad", http.StatusUnprocessableEntity, errors.ErrCodeRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/render", tt.contentType, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var out errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if out.Code != string(tt.wantCode) {
				t.Errorf("code = %q, want %q", out.Code, tt.wantCode)
			}
		})
	}
}

func TestPreviewHTML(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/preview", "text/markdown", "# Title\n\n```d2\nhello\n```\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	page := string(data)
	for _, want := range []string{
		"<h1>Title</h1>",
		`<div class="svg-container">`,
		`id="svg-content-preview_0"`,
		".svg-container",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestPreviewMarkdown(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/preview?format=markdown&path=guide/ch.md", "text/markdown", "```d2\nhi\n```\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `id="svg-content-guide_ch_0"`) {
		t.Errorf("markdown = %q", data)
	}
}

func TestPreviewFailure(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp := post(t, ts.URL+"/preview", "text/markdown", "```d2\nbad\n```\n")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Options{Gatherer: reg})

	health, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `mdbook_svg_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("metrics missing health request:\n%s", data)
	}
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeUnterminatedBlock, http.StatusBadRequest},
		{errors.ErrCodeParse, http.StatusUnprocessableEntity},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeProcessSpawn, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
