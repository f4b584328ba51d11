package resolver

import (
	"context"
	"testing"

	"github.com/0xlukav/larascan/internal/srctree"
)

func parseConfig(t *testing.T, src string) (map[string]ConfigEntry, []Duplicate) {
	t.Helper()
	tree, err := srctree.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return ParseConfigArray(tree)
}

const sessionConfig = `<?php

return [
    'driver' => env('SESSION_DRIVER', 'file'),
    'lifetime' => 120,
    'expire_on_close' => false,
    'secure' => env('SESSION_SECURE_COOKIE'),
    'http_only' => env('SESSION_HTTP_ONLY', true),
    'same_site' => 'lax',
    'domain' => $domain,
    'lottery' => [2, 100],
    'cookie' => [
        'name' => 'app_session',
        'path' => '/',
    ],
];
`

func TestParseConfigArrayResolutions(t *testing.T) {
	entries, dups := parseConfig(t, sessionConfig)
	if len(dups) != 0 {
		t.Errorf("unexpected duplicates: %v", dups)
	}

	tests := []struct {
		key        string
		resolution Resolution
		value      any
	}{
		{"driver", EnvDefault, "file"},
		{"lifetime", Literal, int64(120)},
		{"expire_on_close", Literal, false},
		{"secure", Indeterminate, nil},
		{"http_only", EnvDefault, true},
		{"same_site", Literal, "lax"},
		{"domain", Indeterminate, nil},
		{"cookie.name", Literal, "app_session"},
		{"cookie.path", Literal, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			e, ok := entries[tt.key]
			if !ok {
				t.Fatalf("key %q missing; have %v", tt.key, keys(entries))
			}
			if e.Resolution != tt.resolution {
				t.Errorf("expected %s, got %s", tt.resolution, e.Resolution)
			}
			if e.Known() && e.Value != tt.value {
				t.Errorf("expected value %v, got %v", tt.value, e.Value)
			}
		})
	}
}

func keys(m map[string]ConfigEntry) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSourceLineIsFirstAssignment(t *testing.T) {
	entries, dups := parseConfig(t, `<?php
return [
    'a' => 1,
    'http_only' => false,
    'b' => 2,
    'http_only' => true,
];
`)
	e := entries["http_only"]
	if e.SourceLine != 4 {
		t.Errorf("expected first assignment line 4, got %d", e.SourceLine)
	}
	if v, ok := e.BoolValue(); !ok || v != false {
		t.Errorf("first assignment must win: %v %v", v, ok)
	}
	if len(dups) != 1 || dups[0].Key != "http_only" || dups[0].Line != 6 {
		t.Errorf("expected duplicate http_only at line 6, got %v", dups)
	}
}

func TestDoubleQuotedKeysAndValues(t *testing.T) {
	entries, _ := parseConfig(t, `<?php
return [
    "http_only" => false,
    "path" => "/admin",
    "greeting" => "hello $name",
];
`)
	e, ok := entries["http_only"]
	if !ok {
		t.Fatalf("double-quoted key missing; have %v", keys(entries))
	}
	if v, ok := e.BoolValue(); !ok || v != false {
		t.Errorf("expected literal false, got %v (%s)", e.Value, e.Resolution)
	}
	if s, ok := entries["path"].StringValue(); !ok || s != "/admin" {
		t.Errorf("double-quoted value: expected /admin, got %v", entries["path"].Value)
	}
	// interpolation keeps a double-quoted string indeterminate
	if e := entries["greeting"]; e.Resolution != Indeterminate {
		t.Errorf("interpolated string resolved to %s", e.Resolution)
	}
}

func TestQualifiedEnvCall(t *testing.T) {
	entries, _ := parseConfig(t, `<?php
return [
    'secure' => \env('SESSION_SECURE_COOKIE', true),
];
`)
	e := entries["secure"]
	if e.Resolution != EnvDefault {
		t.Fatalf("expected env-default, got %s", e.Resolution)
	}
	if v, ok := e.BoolValue(); !ok || v != true {
		t.Errorf("expected default true, got %v", e.Value)
	}
}

func TestEnvWithDynamicDefaultIsIndeterminate(t *testing.T) {
	entries, _ := parseConfig(t, `<?php
return [
    'secret' => env('APP_SECRET', $fallback),
    'debug' => env('APP_DEBUG', config('app.fallback')),
];
`)
	for _, key := range []string{"secret", "debug"} {
		if e := entries[key]; e.Resolution != Indeterminate {
			t.Errorf("%s: expected indeterminate, got %s", key, e.Resolution)
		}
	}
}

func TestResolveDeterministicForLiterals(t *testing.T) {
	for i := 0; i < 3; i++ {
		entries, _ := parseConfig(t, `<?php return ['x' => 'abc'];`)
		e := entries["x"]
		if e.Resolution != Literal {
			t.Fatalf("expected literal, got %s", e.Resolution)
		}
		if s, ok := e.StringValue(); !ok || s != "abc" {
			t.Fatalf("expected abc, got %v", e.Value)
		}
	}
}

func TestNoReturnArray(t *testing.T) {
	entries, dups := parseConfig(t, `<?php echo "hello";`)
	if len(entries) != 0 || len(dups) != 0 {
		t.Errorf("expected empty result, got %v %v", entries, dups)
	}
}

func TestFlattenYAML(t *testing.T) {
	entries, err := FlattenYAML([]byte(`
app:
  debug: true
  name: demo
session:
  lifetime: 120
  cookie:
    secure: false
servers:
  - alpha
  - beta
`))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key   string
		value any
	}{
		{"app.debug", true},
		{"app.name", "demo"},
		{"session.lifetime", int64(120)},
		{"session.cookie.secure", false},
		{"servers.0", "alpha"},
		{"servers.1", "beta"},
	}
	for _, tt := range tests {
		e, ok := entries[tt.key]
		if !ok {
			t.Errorf("missing key %s", tt.key)
			continue
		}
		if e.Resolution != Literal || e.Value != tt.value {
			t.Errorf("%s: expected %v, got %v (%s)", tt.key, tt.value, e.Value, e.Resolution)
		}
		if e.SourceLine == 0 {
			t.Errorf("%s: missing source line", tt.key)
		}
	}
}

func TestFlattenYAMLMalformed(t *testing.T) {
	if _, err := FlattenYAML([]byte("not: [valid: yaml")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
