package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadTokensSentinel(t *testing.T) {
	tokens, err := ReadTokens(strings.NewReader("Hello world!\n hello\tWORLD END ignored"), Sentinel)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Hello", "world!", "hello", "WORLD"}
	if strings.Join(tokens, "|") != strings.Join(want, "|") {
		t.Fatalf("tokens %q; expected %q", tokens, want)
	}
}

func TestReadTokensWithoutSentinel(t *testing.T) {
	tokens, err := ReadTokens(strings.NewReader("a END b"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 3 {
		t.Fatalf("tokens %q; expected 3 tokens", tokens)
	}
}

func TestReadTokensEmpty(t *testing.T) {
	tokens, err := ReadTokens(strings.NewReader("  \n\t "), Sentinel)
	if err != nil {
		t.Fatal(err)
	}
	if tokens == nil || len(tokens) != 0 {
		t.Fatalf("tokens %q; expected an empty list", tokens)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(name, []byte("cat, dog.\nCAT Dog\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tokens, err := ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 4 || tokens[0] != "cat," || tokens[3] != "Dog" {
		t.Fatalf("tokens %q", tokens)
	}
}

func TestReadFileRejectsBinary(t *testing.T) {
	name := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(name, []byte{'a', 0, 'b'}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(name); !errors.Is(err, ErrNotText) {
		t.Fatalf("ReadFile returned %v; expected ErrNotText", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("ReadFile returned %v; expected os.ErrNotExist", err)
	}
}

func TestIsTextFileCutRune(t *testing.T) {
	// 1023 ASCII bytes followed by a two-byte rune straddling the sniff limit
	data := strings.Repeat("a", sniffSize-1) + "é tail"
	name := filepath.Join(t.TempDir(), "cut.txt")
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	ok, err := IsTextFile(name)
	if err != nil || !ok {
		t.Fatalf("IsTextFile = %v, %v; expected true", ok, err)
	}
}
