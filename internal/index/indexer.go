package index

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// ImportAll imports every export under root and prunes chats whose export
// is gone. Chats imported from outside root stay while their file exists.
func ImportAll(db *DB, root string) (Stats, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	files, err := scan.ScanRoot(root)
	if err != nil {
		return Stats{}, fmt.Errorf("scan: %w", err)
	}
	stats := ImportFiles(db, files)

	seenKeys := make(map[string]struct{}, len(files))
	for _, fi := range files {
		seenKeys[fi.Key] = struct{}{}
	}
	pruned, err := pruneChats(db, root, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned
	return stats, nil
}

// ImportFiles imports the given exports, skipping those unchanged since the
// last import. Failures are counted and reported on stderr.
func ImportFiles(db *DB, files []scan.FileInfo) Stats {
	stats := Stats{Scanned: len(files)}
	for _, fi := range files {
		updated, err := ImportFile(db, fi)
		if err != nil {
			stats.Errors++
			fmt.Fprintf(os.Stderr, "  WARN: import %s: %v\n", fi.Path, err)
			continue
		}
		if updated {
			stats.Updated++
		} else {
			stats.Skipped++
		}
	}
	return stats
}

// ImportFile parses one export and replaces its chat in the index. It
// reports false when the file is unchanged.
func ImportFile(db *DB, fi scan.FileInfo) (bool, error) {
	needs, err := needsUpdate(db, fi.Key, fi.Mtime, fi.Size)
	if err != nil {
		return false, err
	}
	if !needs {
		return false, nil
	}

	msgs, err := parse.ParseFile(fi.Path)
	if err != nil {
		return false, err
	}
	if err := importChat(db, fi, msgs); err != nil {
		return false, err
	}
	return true, nil
}

func needsUpdate(db *DB, chatKey string, mtime, size int64) (bool, error) {
	st, err := db.GetFileState(chatKey)
	if err != nil {
		return false, err
	}
	if st == nil {
		return true, nil // new chat
	}
	return st.Mtime != mtime || st.Size != size, nil
}

// importChat replaces the stored copy of a chat. The old rows stay in place
// if any insert fails.
func importChat(db *DB, fi scan.FileInfo, msgs []parse.Message) error {
	first, last, err := filter.DateBounds(msgs)
	if err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChat(tx, fi.Key); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO chats (chat_key, name, file_path, first_date, last_date, message_count, user_count, imported_at, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.Key,
		fi.Name,
		fi.Path,
		first.Format(dateLayout),
		last.Format(dateLayout),
		len(msgs),
		len(filter.Users(msgs)),
		time.Now().UTC().Format(TimeLayout),
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_key, seq, ts, user, text, line_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range msgs {
		_, err := stmt.Exec(
			fi.Key,
			m.Seq,
			m.Timestamp.Format(TimeLayout),
			m.User,
			m.Text,
			m.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneChats(db *DB, root string, seenKeys map[string]struct{}) (int, error) {
	all, err := db.AllChatPaths()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key, path := range all {
		if _, ok := seenKeys[key]; ok {
			continue
		}
		if _, err := os.Stat(path); err == nil && !scan.Match(root, path) {
			continue
		}
		if err := db.DeleteChat(key); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
