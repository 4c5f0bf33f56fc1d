package cli

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// TestHelper provides utilities for command tests
type TestHelper struct {
	t       *testing.T
	tempDir string
}

// NewTestHelper isolates HOME and the data dir so no user config is read
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return &TestHelper{t: t, tempDir: dir}
}

// CreateFile writes a file and returns its path
func (h *TestHelper) CreateFile(name string, content []byte) string {
	h.t.Helper()
	path := filepath.Join(h.tempDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
	return path
}

// CreatePNG writes a solid w x h PNG
func (h *TestHelper) CreatePNG(name string, w, ht int, c color.Color) string {
	h.t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.t.Fatalf("failed to encode png: %v", err)
	}
	return h.CreateFile(name, buf.Bytes())
}

// Run executes the command tree and returns stdout, stderr and the exit code
func (h *TestHelper) Run(stdin string, args ...string) (string, string, int) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))

	err := root.Execute()
	if err != nil && !Reported(err) {
		stderr.WriteString("Error: " + err.Error() + "\n")
	}
	return stdout.String(), stderr.String(), ExitCode(err)
}

func TestTextCommand(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.txt", []byte("a\nb\nc\n"))
	b := h.CreateFile("b.txt", []byte("a\nB\nc\n"))

	out, _, code := h.Run("", "text", a, a)
	if code != 0 {
		t.Errorf("identical inputs: exit code = %d, want 0\n%s", code, out)
	}

	out, _, code = h.Run("", "text", a, b)
	if code != 1 {
		t.Errorf("different inputs: exit code = %d, want 1", code)
	}
	for _, want := range []string{"- b", "+ B", "Status: different"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTextCommand_LiteralsJSON(t *testing.T) {
	h := NewTestHelper(t)

	out, _, code := h.Run("", "text", "--left-text", "the cat", "--right-text", "the dog", "-g", "words", "-o", "json")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	var doc struct {
		Status string `json:"status"`
		Detail string `json:"detail"`
		Result struct {
			Added   uint64 `json:"added"`
			Removed uint64 `json:"removed"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.Status != "different" || doc.Detail != "words" || doc.Result.Added != 1 || doc.Result.Removed != 1 {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestTextCommand_Stdin(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.txt", []byte("same\n"))

	_, _, code := h.Run("same\n", "text", "-", a)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	_, stderr, code := h.Run("", "text", "-", "-")
	if code != 2 || !strings.Contains(stderr, "stdin") {
		t.Errorf("two stdin inputs: code = %d, stderr = %q", code, stderr)
	}
}

func TestTextCommand_EnvOverride(t *testing.T) {
	h := NewTestHelper(t)
	t.Setenv("DIFFDECK_TEXT_IGNORE_CASE", "true")

	_, _, code := h.Run("", "text", "--left-text", "Hello", "--right-text", "hello")
	if code != 0 {
		t.Errorf("exit code = %d, want 0 with case ignored", code)
	}
}

func TestTextCommand_RejectsBinary(t *testing.T) {
	h := NewTestHelper(t)
	bin := h.CreateFile("blob.bin", []byte{0x00, 0x01, 0x02, 0xff})
	txt := h.CreateFile("a.txt", []byte("text\n"))

	_, stderr, code := h.Run("", "text", bin, txt)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "not text") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestTextCommand_MissingInput(t *testing.T) {
	h := NewTestHelper(t)

	out, _, code := h.Run("", "text", "-o", "json", filepath.Join(h.tempDir, "nope.txt"), filepath.Join(h.tempDir, "nope2.txt"))
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(out, `"input_missing"`) {
		t.Errorf("expected input_missing kind in JSON error:\n%s", out)
	}
}

func TestImageCommand(t *testing.T) {
	h := NewTestHelper(t)
	white := h.CreatePNG("white.png", 4, 4, color.White)
	black := h.CreatePNG("black.png", 4, 4, color.Black)
	mask := filepath.Join(h.tempDir, "out", "mask.png")

	_, _, code := h.Run("", "image", white, white)
	if code != 0 {
		t.Errorf("identical images: exit code = %d, want 0", code)
	}

	out, _, code := h.Run("", "image", "--mask", mask, white, black)
	if code != 1 {
		t.Errorf("different images: exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "Modified:   16 pixels") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(mask); err != nil {
		t.Errorf("mask not written: %v", err)
	}
}

func TestImageCommand_DecodeFailure(t *testing.T) {
	h := NewTestHelper(t)
	white := h.CreatePNG("white.png", 2, 2, color.White)
	junk := h.CreateFile("junk.png", []byte("not an image"))

	_, stderr, code := h.Run("", "image", white, junk)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestFileCommand(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.bin", []byte("hello world"))
	b := h.CreateFile("b.bin", []byte("hello World!"))

	_, _, code := h.Run("", "file", a, a)
	if code != 0 {
		t.Errorf("identical files: exit code = %d, want 0", code)
	}

	out, _, code := h.Run("", "file", a, b)
	if code != 1 {
		t.Errorf("different files: exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "First diff: byte 6") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, code = h.Run("", "file", "--mode", "metadata", a, b)
	if code != 1 || !strings.Contains(out, "name, size") {
		t.Errorf("metadata mode: code = %d\n%s", code, out)
	}
}

func TestFileCommand_SizeLimit(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.bin", bytes.Repeat([]byte{1}, 2048))

	_, stderr, code := h.Run("", "file", "--max-size", "1KiB", a, a)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "limit") {
		t.Errorf("stderr = %q", stderr)
	}

	// Metadata mode ignores the cap
	_, _, code = h.Run("", "file", "--mode", "metadata", "--max-size", "1KiB", a, a)
	if code != 0 {
		t.Errorf("metadata mode: exit code = %d, want 0", code)
	}
}

func TestShareCommands(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.txt", []byte("left side"))
	b := h.CreateFile("b.txt", []byte("right side"))

	out, stderr, code := h.Run("", "share", "encode", "--left", a, "--right", b, "--setting", "granularity=words")
	if code != 0 {
		t.Fatalf("encode: exit code = %d, stderr = %q", code, stderr)
	}
	fragment := strings.TrimSpace(out)
	if !strings.HasPrefix(fragment, "#share=") {
		t.Fatalf("fragment = %q, want inline", fragment)
	}

	out, _, code = h.Run("", "share", "decode", fragment)
	if code != 0 {
		t.Fatalf("decode: exit code = %d", code)
	}
	for _, want := range []string{"Mode:    text", "Setting: granularity=words", "left side", "right side"} {
		if !strings.Contains(out, want) {
			t.Errorf("decode output missing %q:\n%s", want, out)
		}
	}

	_, stderr, code = h.Run("", "share", "decode", "#share=garbage")
	if code != 2 || !strings.Contains(stderr, "malformed") {
		t.Errorf("malformed fragment: code = %d, stderr = %q", code, stderr)
	}
}

func TestShareCommands_StoredReference(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.txt", []byte(strings.Repeat("left ", 50)))
	b := h.CreateFile("b.txt", []byte(strings.Repeat("right ", 50)))
	db := filepath.Join(h.tempDir, "shares.db")

	out, stderr, code := h.Run("", "share", "--backend", "sqlite", "--store", db, "--max-inline", "10", "encode", "--left", a, "--right", b)
	if code != 0 {
		t.Fatalf("encode: exit code = %d, stderr = %q", code, stderr)
	}
	fragment := strings.TrimSpace(out)
	if !strings.HasPrefix(fragment, "#share-ref=") {
		t.Fatalf("fragment = %q, want stored reference", fragment)
	}

	out, _, code = h.Run("", "share", "--backend", "sqlite", "--store", db, "decode", "-o", "json", fragment)
	if code != 0 {
		t.Fatalf("decode: exit code = %d", code)
	}
	var state struct {
		Mode        string `json:"mode"`
		LeftContent string `json:"leftContent"`
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if state.Mode != "text" || !strings.HasPrefix(state.LeftContent, "left left") {
		t.Errorf("unexpected state: %+v", state)
	}

	out, _, code = h.Run("", "share", "--backend", "sqlite", "--store", db, "sweep")
	if code != 0 || !strings.Contains(out, "Purged 0") {
		t.Errorf("sweep: code = %d\n%s", code, out)
	}

	out, _, code = h.Run("", "share", "--backend", "sqlite", "--store", db, "--retention", "0s", "sweep")
	if code != 0 || !strings.Contains(out, "Purged 1") {
		t.Errorf("sweep with zero retention: code = %d\n%s", code, out)
	}
}

func TestShareCommands_BinaryRoundTrip(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreatePNG("a.png", 4, 4, color.Black)
	b := h.CreatePNG("b.png", 4, 4, color.White)
	db := filepath.Join(h.tempDir, "shares.db")

	out, stderr, code := h.Run("", "share", "--backend", "sqlite", "--store", db, "encode", "--mode", "image", "--left", a, "--right", b)
	if code != 0 {
		t.Fatalf("encode: exit code = %d, stderr = %q", code, stderr)
	}
	fragment := strings.TrimSpace(out)

	out, _, code = h.Run("", "share", "--backend", "sqlite", "--store", db, "decode", "-o", "json", fragment)
	if code != 0 {
		t.Fatalf("decode: exit code = %d", code)
	}
	var state struct {
		LeftContent  string `json:"leftContent"`
		RightContent string `json:"rightContent"`
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	for _, side := range []struct{ path, content string }{{a, state.LeftContent}, {b, state.RightContent}} {
		const prefix = "data:image/png;base64,"
		if !strings.HasPrefix(side.content, prefix) {
			t.Fatalf("content = %.40q, want %s data URL", side.content, prefix)
		}
		got, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(side.content, prefix))
		if err != nil {
			t.Fatalf("invalid base64: %v", err)
		}
		want, err := os.ReadFile(side.path)
		if err != nil {
			t.Fatalf("failed to read %s: %v", side.path, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("restored %d bytes, want the original %d bytes", len(got), len(want))
		}
	}
}

func TestShareCommands_MemoryBackendStaysInline(t *testing.T) {
	h := NewTestHelper(t)
	a := h.CreateFile("a.txt", []byte(strings.Repeat("left ", 50)))
	b := h.CreateFile("b.txt", []byte(strings.Repeat("right ", 50)))

	out, stderr, code := h.Run("", "share", "--backend", "memory", "--max-inline", "10", "encode", "--left", a, "--right", b)
	if code != 0 {
		t.Fatalf("encode: exit code = %d, stderr = %q", code, stderr)
	}
	fragment := strings.TrimSpace(out)
	if !strings.HasPrefix(fragment, "#share=") {
		t.Fatalf("fragment = %.40q, want inline token", fragment)
	}

	out, _, code = h.Run("", "share", "--backend", "memory", "decode", fragment)
	if code != 0 || !strings.Contains(out, "left left") {
		t.Errorf("decode: code = %d\n%s", code, out)
	}
}

func TestConfigCommands(t *testing.T) {
	h := NewTestHelper(t)
	path := filepath.Join(h.tempDir, "cfg", "config.yaml")

	out, _, code := h.Run("", "--config", path, "config", "init")
	if code != 0 || !strings.Contains(out, path) {
		t.Fatalf("init: code = %d\n%s", code, out)
	}

	_, stderr, code := h.Run("", "--config", path, "config", "init")
	if code != 2 || !strings.Contains(stderr, "already exists") {
		t.Errorf("second init: code = %d, stderr = %q", code, stderr)
	}

	t.Setenv("DIFFDECK_IMAGE_THRESHOLD", "42")
	out, _, code = h.Run("", "--config", path, "config", "show")
	if code != 0 {
		t.Fatalf("show: code = %d", code)
	}
	if !strings.Contains(out, "threshold: 42") || !strings.Contains(out, "granularity: lines") {
		t.Errorf("unexpected config:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	h := NewTestHelper(t)

	out, _, code := h.Run("", "version", "--short")
	if code != 0 || strings.TrimSpace(out) != Version {
		t.Errorf("version --short = %q, code %d", out, code)
	}
}

func TestQuietSuppressesReport(t *testing.T) {
	h := NewTestHelper(t)

	out, _, code := h.Run("", "-q", "text", "--left-text", "a", "--right-text", "b")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if out != "" {
		t.Errorf("quiet mode printed %q", out)
	}
}

func TestShareSweep_Locked(t *testing.T) {
	h := NewTestHelper(t)
	db := filepath.Join(h.tempDir, "shares.db")

	held := flock.New(db + ".lock")
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer held.Unlock()

	_, stderr, code := h.Run("", "share", "--backend", "sqlite", "--store", db, "sweep")
	if code != 2 || !strings.Contains(stderr, "another sweep") {
		t.Errorf("concurrent sweep: code = %d, stderr = %q", code, stderr)
	}
}
