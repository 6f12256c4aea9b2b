package open

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Zuo-Peng/chatlens/internal/index"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"vim", []string{"+12", "/tmp/c.txt"}},
		{"/usr/bin/nvim", []string{"+12", "/tmp/c.txt"}},
		{"code", []string{"--goto", "/tmp/c.txt:12"}},
		{"less", []string{"+12", "/tmp/c.txt"}},
		{"gedit", []string{"/tmp/c.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.editor, func(t *testing.T) {
			cmd := EditorCommand(tt.editor, "/tmp/c.txt", 12)
			if got := cmd.Args[1:]; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("args = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenChat_Unknown(t *testing.T) {
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "o.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := OpenChat(db, "nope", -1); err == nil {
		t.Error("OpenChat(unknown) expected error")
	}
}
