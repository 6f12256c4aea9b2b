package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/scan"
)

const chatA = "1/2/23, 10:00 AM - Alice: hello\n" +
	"1/2/23, 10:05 AM - Bob: hi there\nsecond line\n" +
	"2/2/23, 11:59 PM - Alice added Carol\n" +
	"3/2/23, 8:00 AM - Carol: morning all\n"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "sub", "test.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeExport(t *testing.T, path, content string) scan.FileInfo {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	fi, err := scan.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return fi
}

func TestImportFile_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	fi := writeExport(t, filepath.Join(t.TempDir(), "WhatsApp Chat with Friends.txt"), chatA)

	updated, err := ImportFile(db, fi)
	if err != nil || !updated {
		t.Fatalf("ImportFile() = %v, %v", updated, err)
	}

	want, err := parse.ParseFile(fi.Path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadMessages(fi.Key)
	if err != nil {
		t.Fatalf("LoadMessages() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	chat, err := db.GetChat(fi.Key)
	if err != nil || chat == nil {
		t.Fatalf("GetChat() = %v, %v", chat, err)
	}
	if chat.Name != "Friends" || chat.MessageCount != 4 || chat.UserCount != 3 {
		t.Errorf("chat row = %+v", chat)
	}
	if chat.FirstDate != "2023-02-01" || chat.LastDate != "2023-02-03" {
		t.Errorf("dates = %s..%s", chat.FirstDate, chat.LastDate)
	}

	again, err := ImportFile(db, fi)
	if err != nil || again {
		t.Errorf("second ImportFile() = %v, %v, want skipped", again, err)
	}
}

func TestImportFile_ParseError(t *testing.T) {
	db := openTestDB(t)
	fi := writeExport(t, filepath.Join(t.TempDir(), "bad.txt"), "no headers here\n")

	if _, err := ImportFile(db, fi); err == nil {
		t.Fatal("ImportFile() expected error")
	}
	if n, _ := db.ChatCount(); n != 0 {
		t.Errorf("ChatCount() = %d after failed import", n)
	}
}

func TestImportChat_FailureKeepsOldRows(t *testing.T) {
	db := openTestDB(t)
	fi := writeExport(t, filepath.Join(t.TempDir(), "keep.txt"), chatA)
	if _, err := ImportFile(db, fi); err != nil {
		t.Fatal(err)
	}

	msgs, err := parse.ParseFile(fi.Path)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		msgs    []parse.Message
		wantErr bool
		want    int
	}{
		{"duplicate seq rolls back", append(append([]parse.Message(nil), msgs...), msgs[0]), true, 4},
		{"shorter copy replaces", msgs[:2], false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := importChat(db, fi, tt.msgs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("importChat() error = %v, wantErr %v", err, tt.wantErr)
			}
			got, err := db.LoadMessages(fi.Key)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("loaded %d messages, want %d", len(got), tt.want)
			}
			chat, err := db.GetChat(fi.Key)
			if err != nil || chat == nil || chat.MessageCount != tt.want {
				t.Errorf("GetChat() = %+v, %v", chat, err)
			}
			n, _ := db.MessageCount()
			fts, _ := db.FTSCount()
			if fts != n {
				t.Errorf("FTS out of sync: messages=%d fts=%d", n, fts)
			}
		})
	}
}

func TestImportAll_Prune(t *testing.T) {
	db := openTestDB(t)
	root := t.TempDir()
	a := filepath.Join(root, "a.txt")
	writeExport(t, a, chatA)
	writeExport(t, filepath.Join(root, "nested", "b.txt"), "1/1/23, 9:00 AM - Z: x\n")
	writeExport(t, filepath.Join(root, "broken.txt"), "garbage\n")

	stats, err := ImportAll(db, root)
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	if stats.Scanned != 3 || stats.Updated != 2 || stats.Errors != 1 {
		t.Errorf("first run stats = %s", stats)
	}

	// an export imported from elsewhere survives while its file exists
	outside := writeExport(t, filepath.Join(t.TempDir(), "outside.txt"), chatA)
	if _, err := ImportFile(db, outside); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}
	stats, err = ImportAll(db, root)
	if err != nil {
		t.Fatalf("ImportAll() error = %v", err)
	}
	if stats.Pruned != 1 || stats.Skipped != 1 {
		t.Errorf("second run stats = %s", stats)
	}
	if n, _ := db.ChatCount(); n != 2 {
		t.Errorf("ChatCount() = %d, want 2", n)
	}

	msgs, _ := db.MessageCount()
	fts, err := db.FTSCount()
	if err != nil || fts != msgs {
		t.Errorf("FTS out of sync: messages=%d fts=%d err=%v", msgs, fts, err)
	}
}

func TestGetMessagesWindow(t *testing.T) {
	db := openTestDB(t)
	fi := writeExport(t, filepath.Join(t.TempDir(), "w.txt"), chatA)
	if _, err := ImportFile(db, fi); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name                       string
		hit, context               int
		wantLen, wantHit, wantFrom int
	}{
		{name: "middle", hit: 2, context: 1, wantLen: 3, wantHit: 1, wantFrom: 1},
		{name: "start", hit: 0, context: 1, wantLen: 2, wantHit: 0, wantFrom: 0},
		{name: "end", hit: 3, context: 2, wantLen: 3, wantHit: 2, wantFrom: 1},
		{name: "no hit", hit: -1, context: 1, wantLen: 4, wantHit: -1, wantFrom: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, hitIdx, start, total, err := db.GetMessagesWindow(fi.Key, tt.hit, tt.context)
			if err != nil {
				t.Fatalf("GetMessagesWindow() error = %v", err)
			}
			if len(msgs) != tt.wantLen || hitIdx != tt.wantHit || start != tt.wantFrom || total != 4 {
				t.Errorf("got len=%d hit=%d start=%d total=%d", len(msgs), hitIdx, start, total)
			}
		})
	}

	m, err := db.GetMessage(fi.Key, 1)
	if err != nil || m == nil {
		t.Fatalf("GetMessage() = %v, %v", m, err)
	}
	if m.User != "Bob" || m.Line != 2 || !m.Timestamp.Equal(time.Date(2023, 2, 1, 10, 5, 0, 0, time.UTC)) {
		t.Errorf("GetMessage() = %+v", m)
	}
}

func TestListChats(t *testing.T) {
	db := openTestDB(t)
	dir := t.TempDir()
	old := writeExport(t, filepath.Join(dir, "old.txt"), "1/1/20, 9:00 AM - Z: x\n")
	recent := writeExport(t, filepath.Join(dir, "recent.txt"), chatA)
	ImportFiles(db, []scan.FileInfo{old, recent})

	chats, err := db.ListChats()
	if err != nil {
		t.Fatalf("ListChats() error = %v", err)
	}
	if len(chats) != 2 || chats[0].Name != "recent" {
		t.Errorf("ListChats() = %+v", chats)
	}

	ok, err := db.DeleteChatByPath(old.Path)
	if err != nil || !ok {
		t.Errorf("DeleteChatByPath() = %v, %v", ok, err)
	}
	if c, _ := db.GetChat(old.Key); c != nil {
		t.Error("chat still present after delete")
	}
}
