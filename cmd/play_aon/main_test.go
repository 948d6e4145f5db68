package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestParseArgsFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sample_rate: 22050\nbackend: oto\nloops: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, opts, song, err := parseArgs([]string{"-c", path, "--loops", "2", "--filter", "a500", "-o", "out.wav", "tune.aon"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if cfg.SampleRate != 22050 || cfg.Backend != "oto" || cfg.Loops != 2 || cfg.Filter != "a500" {
		t.Fatalf("config:\n%s", spew.Sdump(cfg))
	}
	if opts.render != "out.wav" || song != "tune.aon" {
		t.Fatalf("options: %+v song %q", opts, song)
	}
}

func TestParseArgsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"a.aon", "b.aon"},
		{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "a.aon"},
		{"--backend", "jack", "a.aon"},
	} {
		if _, _, _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%q) succeeded", args)
		}
	}
}
