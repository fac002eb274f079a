package store

import (
	"bufio"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
)

// needsCompaction reports whether dead commands exceed the free space
// threshold of the file. Pending transaction changes hold it off.
func (s *Store) needsCompaction() bool {
	if s.dead == 0 || s.commands == 0 || len(s.pending) > 0 || len(s.journal) > 0 {
		return false
	}
	return s.dead*100 > s.commands*s.attributes.FreeSpacePercent()
}

// compact rewrites the log with one command per live row. The snapshot is
// written next to the log and renamed over it.
func (s *Store) compact() error {

	tmp := s.filename + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w: %w", err, btrieve.StatusIOError)
	}

	commands, err := s.writeSnapshot(f)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	err = s.file.Close()
	if err != nil {
		return fmt.Errorf("close log: %w: %w", err, btrieve.StatusCloseError)
	}

	err = os.Rename(tmp, s.filename)
	if err != nil {
		return fmt.Errorf("rename snapshot: %w: %w", err, btrieve.StatusIOError)
	}

	s.file, err = os.OpenFile(s.filename, os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("open file for write: %w: %w", err, btrieve.StatusIOError)
	}

	glog.Infof("store '%s' compacted: %d commands, %d dead, now %d", s.filename, s.commands, s.dead, commands)
	s.commands = commands
	s.dead = 0

	return nil
}

func (s *Store) writeSnapshot(f *os.File) (int, error) {

	w := bufio.NewWriterSize(f, 1024*1024)
	codec := s.codec()
	commands := 0

	indexes := []btrieve.IndexAttributes{}
	for i := btrieve.Index(0); int(i) < len(s.indexes); i++ {
		indexes = append(indexes, s.indexes[i].attributes)
	}
	err := writeCommand(w, commandCreate, codec, &createPayload{
		Attributes: s.attributes,
		Indexes:    indexes,
	})
	if err != nil {
		return 0, err
	}
	commands++

	if s.owner.Mode != btrieve.OwnerModeNone {
		err := writeCommand(w, commandOwner, codec, &s.owner)
		if err != nil {
			return 0, err
		}
		commands++
	}

	s.physical.Ascend(func(row *Row) bool {
		var data []byte
		data, err = s.record(row, Committed)
		if err != nil {
			return false
		}
		seqs := map[btrieve.Index]uint64{}
		for n, e := range row.entries {
			if e.seq != row.created {
				seqs[n] = e.seq
			}
		}
		err = writeCommand(w, commandInsert, codec, &rowPayload{
			Position: row.Position,
			Data:     s.logged(data),
			Seq:      row.created,
			Seqs:     seqs,
		})
		commands++
		return err == nil
	})
	if err != nil {
		return 0, err
	}

	err = w.Flush()
	if err != nil {
		return 0, fmt.Errorf("flush snapshot: %w: %w", err, btrieve.StatusIOError)
	}

	return commands, nil
}
