package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	home := t.TempDir()
	return NewResolver(DefaultSymbolicRoots(home)), home
}

func Test_Resolver_SymbolicRootAnyCase(t *testing.T) {
	r, home := newTestResolver(t)

	tests := []struct {
		input string
		want  string
	}{
		{"Downloads/note.txt", filepath.Join(home, "Downloads", "note.txt")},
		{"downloads/note.txt", filepath.Join(home, "Downloads", "note.txt")},
		{"DOWNLOADS/a/b.txt", filepath.Join(home, "Downloads", "a", "b.txt")},
		{"Desktop/x.txt", filepath.Join(home, "Desktop", "x.txt")},
		{"dEsKtOp/x.txt", filepath.Join(home, "Desktop", "x.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := r.Resolve(tt.input)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func Test_Resolver_BareSymbolicRoot(t *testing.T) {
	r, home := newTestResolver(t)

	got := r.Resolve("Desktop")
	want := filepath.Join(home, "Desktop")
	if got != want {
		t.Errorf("expected bare root to resolve to %q, got %q", want, got)
	}
}

func Test_Resolver_AbsolutePathUnchanged(t *testing.T) {
	r, _ := newTestResolver(t)
	abs := filepath.Join(t.TempDir(), "some", "file.txt")

	if got := r.Resolve(abs); got != abs {
		t.Errorf("expected %q, got %q", abs, got)
	}
}

func Test_Resolver_RelativeToWorkingDirectory(t *testing.T) {
	r, _ := newTestResolver(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	got := r.Resolve("notes/todo.txt")
	want := filepath.Join(wd, "notes", "todo.txt")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func Test_Resolver_NameContainingRootIsNotSubstituted(t *testing.T) {
	r, _ := newTestResolver(t)
	wd, _ := os.Getwd()

	got := r.Resolve("Downloads-old/a.txt")
	want := filepath.Join(wd, "Downloads-old", "a.txt")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
