package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

const npmV1 = `{
  "lockfileVersion": 1,
  "dependencies": {
    "left-pad": {
      "version": "1.2.0"
    },
    "express": {
      "version": "4.17.1",
      "dependencies": {
        "cookie": {
          "version": "0.4.0"
        }
      }
    }
  }
}`

const npmV2 = `{
  "lockfileVersion": 2,
  "packages": {
    "": {"name": "app", "version": "1.0.0"},
    "node_modules/left-pad": {"version": "1.2.0"},
    "node_modules/@babel/core": {"version": "7.20.0"},
    "node_modules/a/node_modules/b": {"version": "2.0.0"}
  }
}`

func TestParseNpmLockV1Nested(t *testing.T) {
	got, err := ParseNpmLock([]byte(npmV1))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"left-pad": "1.2.0", "express": "4.17.1", "cookie": "0.4.0"}
	for name, version := range want {
		if got[name] != version {
			t.Errorf("%s: expected %s, got %s", name, version, got[name])
		}
	}
}

func TestParseNpmLockV2Packages(t *testing.T) {
	got, err := ParseNpmLock([]byte(npmV2))
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		"left-pad":    "1.2.0",
		"@babel/core": "7.20.0",
		"b":           "2.0.0",
	}
	for name, version := range tests {
		if got[name] != version {
			t.Errorf("%s: expected %s, got %q", name, version, got[name])
		}
	}
	if _, ok := got["app"]; ok {
		t.Error("root project entry must not appear as a dependency")
	}
}

func TestParseNpmLockMalformed(t *testing.T) {
	if _, err := ParseNpmLock([]byte("{nope")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

const yarnLock = `# THIS IS AN AUTOGENERATED FILE. DO NOT EDIT THIS FILE DIRECTLY.
# yarn lockfile v1


left-pad@^1.1.0, left-pad@~1.2.0:
  version "1.2.0"
  resolved "https://registry.yarnpkg.com/left-pad/-/left-pad-1.2.0.tgz"

"@babel/core@^7.0.0":
  version "7.20.0"
  dependencies:
    "@babel/parser" "^7.20.0"

lodash@4.17.15:
  version "4.17.15"
`

func TestParseYarnLock(t *testing.T) {
	got, err := ParseYarnLock([]byte(yarnLock))
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		"left-pad":    "1.2.0",
		"@babel/core": "7.20.0",
		"lodash":      "4.17.15",
	}
	for name, version := range tests {
		if got[name] != version {
			t.Errorf("%s: expected %s, got %q", name, version, got[name])
		}
	}
	if len(got) != len(tests) {
		t.Errorf("unexpected extra entries: %v", got)
	}
}

func TestSelectorName(t *testing.T) {
	tests := []struct {
		sel      string
		expected string
	}{
		{"left-pad@^1.1.0", "left-pad"},
		{`"@babel/core@^7.0.0"`, "@babel/core"},
		{"lodash@4.17.15", "lodash"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := selectorName(tt.sel); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.sel, tt.expected, got)
		}
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "yarn.lock"), []byte(yarnLock), 0o644); err != nil {
		t.Fatal(err)
	}
	installed, name, found, err := Detect(dir)
	if err != nil || !found || name != "yarn.lock" {
		t.Fatalf("unexpected detect result: %v %v %v", name, found, err)
	}
	if installed["lodash"] != "4.17.15" {
		t.Errorf("expected lodash version, got %v", installed)
	}

	_, _, found, err = Detect(t.TempDir())
	if err != nil || found {
		t.Errorf("expected no lockfile, got found=%v err=%v", found, err)
	}
}
