package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"foo/bar":          "foo-bar",
		"foo\\bar":         "foo-bar",
		"  spaced name  ": "spaced-name",
		"":                 "download",
	}
	for in, want := range cases {
		got := SafeFileName(in)
		if got != want {
			t.Fatalf("SafeFileName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestUniquePath(t *testing.T) {
	d := t.TempDir()
	base := "font pack.zip"
	p1, err := UniquePath(d, base)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p1) != "font-pack.zip" {
		t.Fatalf("got %s want font-pack.zip", filepath.Base(p1))
	}
	if err := os.WriteFile(p1, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p2, err := UniquePath(d, base)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(p2) != "font-pack (2).zip" {
		t.Fatalf("unexpected p2: %s", filepath.Base(p2))
	}
}

func TestFolderFromPath(t *testing.T) {
	cases := map[string]string{
		`C:\Users\x\Downloads\Sorted\Fonts\a.zip`: "C:/Users/x/Downloads/Sorted/Fonts/",
		"/home/u/Downloads/a.zip":                 "/home/u/Downloads/",
		"bare.zip":                                "",
		"":                                        "",
	}
	for in, want := range cases {
		if got := FolderFromPath(in); got != want {
			t.Errorf("FolderFromPath(%q)=%q want %q", in, got, want)
		}
	}
}

func TestFolderName(t *testing.T) {
	cases := []struct {
		dir  string
		want string
	}{
		{"C:/Users/x/Downloads/Sorted/Fonts/", "Fonts"},
		{`C:\Users\x\Downloads\Sorted\Fonts\`, "Fonts"},
		{"/home/u/Downloads/sorted/Icons/", "Icons"}, // marker match is case-insensitive
		{"/home/u/Downloads/Sorted/", "Root"},
		{"/home/u/Downloads/Icons/", "Icons"},
		{"/home/u/Downloads/", "Root"},
		{"Sorted/Vectors/", "Vectors"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FolderName("Sorted", c.dir); got != c.want {
			t.Errorf("FolderName(Sorted, %q)=%q want %q", c.dir, got, c.want)
		}
	}
}

func TestFolderNameNestedUnderRoot(t *testing.T) {
	// Subfolders below the managed root keep their relative path
	got := FolderName("Sorted", "/home/u/Downloads/Sorted/Design/Fonts/")
	if got != "Design/Fonts" {
		t.Fatalf("got %q want Design/Fonts", got)
	}
}
