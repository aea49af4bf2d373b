package fetch

import (
	"errors"
	"testing"
)

func TestEndpoint_URL(t *testing.T) {
	tests := []struct {
		name    string
		ep      Endpoint
		want    string
		wantErr bool
	}{
		{
			name: "defaults",
			ep:   Endpoint{Key: "abc"},
			want: "https://generativelanguage.googleapis.com/v1beta/models?key=abc",
		},
		{
			name: "custom base with path prefix and trailing slash",
			ep:   Endpoint{BaseURL: "http://127.0.0.1:8080/proxy/", Version: "v1", Key: "k"},
			want: "http://127.0.0.1:8080/proxy/v1/models?key=k",
		},
		{
			name: "key is query-escaped",
			ep:   Endpoint{Key: "a b&c"},
			want: "https://generativelanguage.googleapis.com/v1beta/models?key=a+b%26c",
		},
		{
			name: "custom key param",
			ep:   Endpoint{Resource: "tunedModels", KeyParam: "api_key", Key: "k"},
			want: "https://generativelanguage.googleapis.com/v1beta/tunedModels?api_key=k",
		},
		{name: "missing key", ep: Endpoint{Key: "  "}, wantErr: true},
		{name: "no scheme", ep: Endpoint{BaseURL: "example.com", Key: "k"}, wantErr: true},
		{name: "bad scheme", ep: Endpoint{BaseURL: "ftp://example.com", Key: "k"}, wantErr: true},
		{name: "unparsable", ep: Endpoint{BaseURL: "http://[::1", Key: "k"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ep.URL()
			if (err != nil) != tt.wantErr {
				t.Fatalf("URL() err=%v, wantErr=%v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("URL()=%q, want %q", got, tt.want)
			}
		})
	}
}

func TestEndpoint_URL_MissingKeySentinel(t *testing.T) {
	if _, err := (Endpoint{}).URL(); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestOperationError(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := fail(StageFetch, base)
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatal("every OperationError must match ErrOperationFailed")
	}
	if !errors.Is(err, base) {
		t.Fatal("OperationError must unwrap to its cause")
	}
	if err.Error() != base.Error() {
		t.Fatalf("message should be the cause description, got %q", err.Error())
	}
	if StageOf(err) != StageFetch {
		t.Fatalf("StageOf=%q", StageOf(err))
	}
	if StageOf(base) != "" {
		t.Fatal("plain errors have no stage")
	}
	if (&OperationError{Stage: StageWrite}).Error() != ErrOperationFailed.Error() {
		t.Fatal("nil cause should fall back to the sentinel text")
	}
}
