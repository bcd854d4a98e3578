package dump

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCreateDirs(t *testing.T) {
	dir := t.TempDir()

	if err := CreateDirs(dir); err != nil {
		t.Fatalf("CreateDirs() unexpected error: %v", err)
	}

	for _, c := range AllCollections {
		info, err := os.Stat(c.Dir(dir))
		if err != nil {
			t.Errorf("collection dir %s not created: %v", c, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("collection path %s is not a directory", c)
		}
	}
}

func TestVersionFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if err := WriteVersionFile(dir); err != nil {
		t.Fatalf("WriteVersionFile() unexpected error: %v", err)
	}

	version, err := ReadVersionFile(dir)
	if err != nil {
		t.Fatalf("ReadVersionFile() unexpected error: %v", err)
	}
	if version != FormatVersion {
		t.Errorf("ReadVersionFile() = %d, want %d", version, FormatVersion)
	}
}

func TestReadVersionFile_Missing(t *testing.T) {
	if _, err := ReadVersionFile(t.TempDir()); err == nil {
		t.Error("ReadVersionFile() expected error for missing file, got nil")
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{name: "plain number", data: "2", want: 2},
		{name: "trailing newline", data: "2\n", want: 2},
		{name: "surrounding whitespace", data: "  3 \n", want: 3},
		{name: "empty", data: "", wantErr: true},
		{name: "not a number", data: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseVersion(%q) expected error, got nil", tt.data)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.data, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %d, want %d", tt.data, got, tt.want)
			}
		})
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	if err := CreateDirs(dir); err != nil {
		t.Fatal(err)
	}
	if err := WriteVersionFile(dir); err != nil {
		t.Fatal(err)
	}
	path := Tasks.ItemPath(dir, "abc")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Clear(dir); err != nil {
		t.Fatalf("Clear() unexpected error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Clear() left item files behind")
	}
	// Dirs and version marker survive a clear.
	for _, c := range AllCollections {
		if _, err := os.Stat(c.Dir(dir)); err != nil {
			t.Errorf("Clear() removed collection dir %s", c)
		}
	}
	if _, err := ReadVersionFile(dir); err != nil {
		t.Errorf("Clear() removed version file: %v", err)
	}
}

func TestListUUIDs(t *testing.T) {
	dir := t.TempDir()
	if err := CreateDirs(dir); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"b.json", "a.json", "noise.txt"} {
		path := filepath.Join(Projects.Dir(dir), name)
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	uuids, err := ListUUIDs(dir, Projects)
	if err != nil {
		t.Fatalf("ListUUIDs() unexpected error: %v", err)
	}
	want := []string{"a", "b"}
	if !reflect.DeepEqual(uuids, want) {
		t.Errorf("ListUUIDs() = %v, want %v", uuids, want)
	}
}

func TestListUUIDs_MissingDir(t *testing.T) {
	uuids, err := ListUUIDs(t.TempDir(), Tasks)
	if err != nil {
		t.Fatalf("ListUUIDs() unexpected error: %v", err)
	}
	if len(uuids) != 0 {
		t.Errorf("ListUUIDs() = %v, want empty", uuids)
	}
}
