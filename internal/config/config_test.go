package config

import "testing"

func TestDeriveSocketBase(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080/api/v1":  "http://localhost:8080",
		"https://movies.example/api/v1": "https://movies.example",
		"http://10.0.0.5:3000":          "http://10.0.0.5:3000",
	}
	for in, want := range cases {
		if got := deriveSocketBase(in); got != want {
			t.Errorf("deriveSocketBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SOCKET_BASE_URL", "")
	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8080/api/v1" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.SocketBaseURL != "http://localhost:8080" {
		t.Errorf("SocketBaseURL = %q", cfg.SocketBaseURL)
	}
}

func TestLoadSocketOverride(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://movies.example/api/v1/")
	t.Setenv("SOCKET_BASE_URL", "wss://push.movies.example")
	cfg := Load()
	if cfg.APIBaseURL != "https://movies.example/api/v1" {
		t.Errorf("APIBaseURL = %q, trailing slash should be trimmed", cfg.APIBaseURL)
	}
	if cfg.SocketBaseURL != "wss://push.movies.example" {
		t.Errorf("SocketBaseURL = %q", cfg.SocketBaseURL)
	}
}
