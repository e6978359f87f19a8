package cmd

import (
	"strings"
	"testing"

	"evmobf/internal/bytecode"
	"evmobf/internal/config"
	"evmobf/internal/opcodes"
)

func TestModelShowsObfuscation(t *testing.T) {
	code := bytecode.MustParse(returner)
	report, err := BuildReport(code, opcodes.Default(), false)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	cfg := config.Default()
	cfg.Seed = 1
	m := NewModel(code, report, cfg)
	if m.sites.Items() == nil || len(m.sites.Items()) != 2 {
		t.Fatalf("site list has %d items, want 2", len(m.sites.Items()))
	}

	msg := obfuscateCmd(code, cfg)()
	next, _ := m.Update(msg)
	got := next.(model)
	if got.mode != viewOutput || got.err != nil || got.result == nil {
		t.Fatalf("after obfuscation mode = %v err = %v", got.mode, got.err)
	}
	if len(got.result.Sites) != 2 {
		t.Errorf("obfuscated %d sites, want 2", len(got.result.Sites))
	}
	if !strings.Contains(got.View(), "Q: quit") {
		t.Error("View() lacks the menu")
	}
}

func TestSiteItem(t *testing.T) {
	report, err := BuildReport(bytecode.MustParse(returner), opcodes.Default(), false)
	if err != nil {
		t.Fatal(err)
	}
	item := siteItem{n: 2, site: report.Sites[1]}
	if got := item.Title(); got != "  2  00000e  PUSH2 0x000c" {
		t.Errorf("Title() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if got := wrap("abcdefg", 3); got != "abc\ndef\ng" {
		t.Errorf("wrap() = %q", got)
	}
	if got := wrap("abc", 0); got != "abc" {
		t.Errorf("wrap() width 0 = %q", got)
	}
}
