package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/pflag"
)

// resetRootFlags puts every flag back to its default so viper sees them as unset.
func resetRootFlags() {
	for _, fs := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func TestRootCmd_KeySources(t *testing.T) {
	var (
		mu      sync.Mutex
		gotKeys []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotKeys = append(gotKeys, r.URL.Query().Get("key"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"models":[{"name":"models/a"}]}`))
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		env    map[string]string
		args   []string
		config string

		wantKey string
	}{
		{
			name:    "api-key flag",
			args:    []string{"--api-key", "flag-key-1234"},
			wantKey: "flag-key-1234",
		},
		{
			name:    "MODELFETCH_API_KEY env",
			env:     map[string]string{"MODELFETCH_API_KEY": "env-key-1234"},
			wantKey: "env-key-1234",
		},
		{
			name:    "endpoint.key in config file",
			config:  "endpoint:\n  key: file-key-1234\n",
			wantKey: "file-key-1234",
		},
		{
			name:    "default key_from_env",
			env:     map[string]string{"GEMINI_API_KEY": "gemini-key-1234"},
			wantKey: "gemini-key-1234",
		},
		{
			name:    "custom key_from_env",
			env:     map[string]string{"MODELFETCH_TEST_KEY": "custom-key-1234", "GEMINI_API_KEY": "gemini-key-1234"},
			config:  "endpoint:\n  key_from_env: MODELFETCH_TEST_KEY\n",
			wantKey: "custom-key-1234",
		},
		{
			name:    "flag beats env",
			env:     map[string]string{"MODELFETCH_API_KEY": "env-key-1234"},
			args:    []string{"--api-key", "flag-key-1234"},
			wantKey: "flag-key-1234",
		},
		{
			name:    "env beats config file",
			env:     map[string]string{"MODELFETCH_API_KEY": "env-key-1234"},
			config:  "endpoint:\n  key: file-key-1234\n",
			wantKey: "env-key-1234",
		},
		{
			name:    "config file beats key_from_env",
			env:     map[string]string{"GEMINI_API_KEY": "gemini-key-1234"},
			config:  "endpoint:\n  key: file-key-1234\n",
			wantKey: "file-key-1234",
		},
		{
			name: "no key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRootFlags()
			t.Cleanup(func() {
				resetRootFlags()
				rootCmd.SetOut(nil)
				rootCmd.SetArgs(nil)
			})
			for _, name := range []string{"MODELFETCH_API_KEY", "GEMINI_API_KEY", "MODELFETCH_CONFIG", "MODELFETCH_HISTORY"} {
				t.Setenv(name, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			mu.Lock()
			gotKeys = nil
			mu.Unlock()

			dir := t.TempDir()
			out := filepath.Join(dir, "full_models.json")
			args := append([]string{"--base-url", srv.URL, "-o", out}, tt.args...)
			if tt.config != "" {
				cfgPath := filepath.Join(dir, "config.yaml")
				if err := os.WriteFile(cfgPath, []byte(tt.config), 0o600); err != nil {
					t.Fatal(err)
				}
				args = append(args, "--config", cfgPath)
			}

			var stdout bytes.Buffer
			rootCmd.SetOut(&stdout)
			rootCmd.SetArgs(args)
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute: %v", err)
			}

			mu.Lock()
			keys := append([]string(nil), gotKeys...)
			mu.Unlock()

			if tt.wantKey == "" {
				if len(keys) != 0 {
					t.Fatalf("no request expected without a key, server saw %v", keys)
				}
				if !strings.HasPrefix(stdout.String(), "Error: missing API key") {
					t.Fatalf("stdout=%q", stdout.String())
				}
				return
			}
			if len(keys) != 1 || keys[0] != tt.wantKey {
				t.Fatalf("server saw keys %v, want [%s]", keys, tt.wantKey)
			}
			if stdout.String() != "Full model list saved to "+out+"\n" {
				t.Fatalf("stdout=%q", stdout.String())
			}
		})
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	resetRootFlags()
	t.Cleanup(func() {
		resetRootFlags()
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"unexpected"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected an error for positional arguments")
	}
	if stdout.Len() != 0 {
		t.Fatalf("nothing should be printed, got %q", stdout.String())
	}
}
