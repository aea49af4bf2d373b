package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch_Success(t *testing.T) {
	var gotPath, gotKey, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotKey, gotMethod = r.URL.Path, r.URL.Query().Get("key"), r.Method
		_, _ = w.Write([]byte(`{"models":[{"name":"models/a"},{"name":"models/b"}],"nextPageToken":"p2"}`))
	}))
	defer srv.Close()

	p, err := NewFetcher(nil).Fetch(context.Background(), Endpoint{BaseURL: srv.URL, Key: "k-1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/v1beta/models" || gotKey != "k-1" {
		t.Fatalf("unexpected request method=%s path=%s key=%s", gotMethod, gotPath, gotKey)
	}
	if p.StatusCode != 200 || p.Items() != 2 || p.NextPageToken() != "p2" {
		t.Fatalf("unexpected payload status=%d items=%d token=%q", p.StatusCode, p.Items(), p.NextPageToken())
	}
}

func TestFetcher_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantStage Stage
		wantText  string
	}{
		{"not json", 200, "<html>oops</html>", StageParse, "not valid JSON"},
		{"empty body", 200, "", StageParse, "not valid JSON"},
		{"truncated json", 200, `{"models":[`, StageParse, "not valid JSON"},
		{"invalid utf8", 200, "{\"a\":\"\xff\xfe\"}", StageDecode, "UTF-8"},
		{"server error", 500, "boom", StageFetch, "HTTP Error 500: Internal Server Error"},
		{"api error message", 400, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, StageFetch, "HTTP Error 400: Bad Request: API key not valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			p, err := NewFetcher(nil).Fetch(context.Background(), Endpoint{BaseURL: srv.URL, Key: "k"})
			if err == nil {
				t.Fatalf("expected error")
			}
			if StageOf(err) != tt.wantStage {
				t.Fatalf("stage=%q, want %q (err=%v)", StageOf(err), tt.wantStage, err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Fatalf("error %q should contain %q", err.Error(), tt.wantText)
			}
			if p.Body != nil {
				t.Fatalf("failed fetch must not return a body")
			}
			if p.StatusCode != tt.status {
				t.Fatalf("status=%d, want %d", p.StatusCode, tt.status)
			}
		})
	}
}

func TestFetcher_Fetch_MissingKeyMakesNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	_, err := NewFetcher(nil).Fetch(context.Background(), Endpoint{BaseURL: srv.URL})
	if StageOf(err) != StageRequest {
		t.Fatalf("expected request-stage failure, got %v", err)
	}
	if called {
		t.Fatal("no request should be sent without a key")
	}
}

func TestIndent_MatchesTwoSpaceLayout(t *testing.T) {
	src := []byte(`{"b":{"c":"x","n":1.50},"a":[1,2,{"z":null,"t":true}],"e":[],"s":"é"}`)
	var want bytes.Buffer
	if err := json.Indent(&want, src, "", "  "); err != nil {
		t.Fatal(err)
	}
	want.WriteByte('\n')

	if got := string(Indent(src, "")); got != want.String() {
		t.Fatalf("Indent mismatch\n got: %s\nwant: %s", got, want.String())
	}
}

func TestIndent_CustomIndent(t *testing.T) {
	got := string(Indent([]byte(`{"a":1}`), "\t"))
	if got != "{\n\t\"a\": 1\n}\n" {
		t.Fatalf("unexpected tab indent: %q", got)
	}
}
