package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/golang/glog"
	"github.com/google/btree"

	"github.com/fulldump/btrievedb/btrieve"
)

// versions identifies every stored form a row ever had, across all stores.
// It keys the decoded record cache.
var versions atomic.Uint64

// Committed is the owner of writes made outside a transaction. They are
// logged and seen by every reader right away.
const Committed uint64 = 0

type Options struct {
	Codec      Codec
	Cache      *ristretto.Cache[uint64, []byte]
	SyncWrites bool
}

type Store struct {
	filename     string
	file         *os.File
	mutex        *sync.RWMutex
	options      Options
	attributes   btrieve.FileAttributes
	owner        ownerPayload
	rows         map[int64]*Row
	pending      map[int64]*Row
	journal      map[uint64][]journaled
	physical     *btree.BTreeG[*Row]
	indexes      map[btrieve.Index]*Index
	nextPosition int64
	nextSeq      uint64
	generation   uint64
	commands     int
	dead         int
	continuous   bool
}

type Row struct {
	Position int64
	stored   []byte
	version  uint64
	created  uint64
	entries  map[btrieve.Index]*entry
	pending  *pending
}

func newStore(filename string, options Options) *Store {
	return &Store{
		filename:     filename,
		mutex:        &sync.RWMutex{},
		options:      options,
		rows:         map[int64]*Row{},
		pending:      map[int64]*Row{},
		journal:      map[uint64][]journaled{},
		physical:     btree.NewG(32, lessPosition),
		indexes:      map[btrieve.Index]*Index{},
		nextPosition: 1,
	}
}

func lessPosition(a, b *Row) bool {
	return a.Position < b.Position
}

// Create writes a new store file with its attributes and initial indexes.
// An existing file is replaced.
func Create(filename string, attributes btrieve.FileAttributes, indexes []btrieve.IndexAttributes, options Options) (*Store, error) {

	err := attributes.Validate()
	if err != nil {
		return nil, err
	}
	if attributes.KeyOnly && len(indexes) != 1 {
		return nil, fmt.Errorf("key only files need exactly one index: %w", btrieve.StatusNumberOfIndexes)
	}

	s := newStore(filename, options)
	s.attributes = attributes

	created := []btrieve.IndexAttributes{}
	for _, ia := range indexes {
		index, err := s.addIndex(ia)
		if err != nil {
			return nil, err
		}
		created = append(created, index.attributes)
	}
	if attributes.KeyOnly && created[0].NullMode() != btrieve.NullKeyModeNone {
		return nil, fmt.Errorf("key only index cannot exclude null keys: %w", btrieve.StatusInconsistentKeyFlags)
	}

	s.file, err = os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for write: %w: %w", err, btrieve.StatusCreateIoError)
	}

	err = s.persist(commandCreate, &createPayload{
		Attributes: attributes,
		Indexes:    created,
	})
	if err != nil {
		s.file.Close()
		return nil, err
	}

	glog.Infof("store '%s' created with %d indexes", filename, len(created))

	return s, nil
}

// Open loads a store by replaying its command log.
func Open(filename string, options Options) (*Store, error) {

	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("open '%s': %w", filename, btrieve.StatusFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open file for read: %w: %w", err, btrieve.StatusIOError)
	}

	s := newStore(filename, options)

	err = s.replay(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	// Open file for append only
	s.file, err = os.OpenFile(filename, os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for write: %w: %w", err, btrieve.StatusIOError)
	}

	return s, nil
}

func (s *Store) replay(r io.Reader) error {

	decoder := jsontext.NewDecoder(r)
	first := true
	for {
		command := &Command{}
		err := json.UnmarshalDecode(decoder, command)
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			glog.Warningf("store '%s': ignoring truncated command at the end of the log", s.filename)
			break
		}
		if err != nil {
			if first {
				return fmt.Errorf("decode command: %w: %w", err, btrieve.StatusNotABtrieveFile)
			}
			return fmt.Errorf("decode command: %w: %w", err, btrieve.StatusUnrecoverableError)
		}

		if first != (command.Name == commandCreate) {
			return fmt.Errorf("unexpected command '%s': %w", command.Name, btrieve.StatusNotABtrieveFile)
		}
		first = false

		err = s.apply(command)
		if err != nil {
			if command.Name == commandCreate {
				return err
			}
			glog.Warningf("store '%s': %s '%s': %s", s.filename, command.Name, command.Uuid, err.Error())
		}
		s.commands++
	}

	if first {
		return fmt.Errorf("empty log: %w", btrieve.StatusNotABtrieveFile)
	}

	return nil
}

func (s *Store) apply(command *Command) error {

	switch command.Name {
	case commandCreate:
		payload := &createPayload{}
		err := command.decode(payload)
		if err != nil {
			return fmt.Errorf("%w: %w", err, btrieve.StatusNotABtrieveFile)
		}
		s.attributes = payload.Attributes
		for _, attributes := range payload.Indexes {
			_, err := s.addIndex(attributes)
			if err != nil {
				return err
			}
		}
	case commandInsert:
		payload := &rowPayload{}
		err := command.decode(payload)
		if err != nil {
			return err
		}
		data, err := s.decodeStored(payload.Data)
		if err != nil {
			return err
		}
		row := &Row{Position: payload.Position, created: payload.Seq}
		return s.insertRow(row, data, payload.Seqs, false)
	case commandUpdate:
		payload := &rowPayload{}
		err := command.decode(payload)
		if err != nil {
			return err
		}
		row, exists := s.rows[payload.Position]
		if !exists {
			return fmt.Errorf("position %d: %w", payload.Position, btrieve.StatusPositionNotSet)
		}
		data, err := s.decodeStored(payload.Data)
		if err != nil {
			return err
		}
		s.dead++
		return s.updateRow(row, data, payload.Seqs, Committed, false)
	case commandDelete:
		payload := &rowPayload{}
		err := command.decode(payload)
		if err != nil {
			return err
		}
		row, exists := s.rows[payload.Position]
		if !exists {
			return fmt.Errorf("position %d: %w", payload.Position, btrieve.StatusPositionNotSet)
		}
		s.dead += 2
		s.removeRow(row)
	case commandIndex:
		attributes := btrieve.IndexAttributes{}
		err := command.decode(&attributes)
		if err != nil {
			return err
		}
		_, err = s.createIndex(attributes, false)
		return err
	case commandDropIndex:
		payload := &dropIndexPayload{}
		err := command.decode(payload)
		if err != nil {
			return err
		}
		s.dead += 2
		return s.dropIndex(payload.Index, false)
	case commandOwner:
		payload := &ownerPayload{}
		err := command.decode(payload)
		if err != nil {
			return err
		}
		if s.owner.Mode != btrieve.OwnerModeNone {
			s.dead++
		}
		s.owner = *payload
	default:
		return fmt.Errorf("unknown command")
	}

	return nil
}

func (s *Store) codec() Codec {
	if s.attributes.PageCompression {
		return CodecZstd
	}
	return s.options.Codec
}

func (s *Store) persist(name string, payload interface{}) error {

	if s.file == nil {
		return fmt.Errorf("store is closed: %w", btrieve.StatusFileNotOpen)
	}

	err := writeCommand(s.file, name, s.codec(), payload)
	if err != nil {
		return err
	}

	if s.options.SyncWrites {
		err = s.file.Sync()
		if err != nil {
			return fmt.Errorf("sync log: %w: %w", err, btrieve.StatusIOError)
		}
	}

	s.commands++
	return nil
}

// Count is the number of committed records.
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.count(Committed)
}

// count is the number of records owner sees.
func (s *Store) count(owner uint64) int {
	n := len(s.rows)
	for _, row := range s.pending {
		if !row.visible(owner) {
			n--
		}
	}
	return n
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.file == nil {
		return nil
	}

	if !s.continuous && s.needsCompaction() {
		err := s.compact()
		if err != nil {
			glog.Errorf("store '%s': compact: %s", s.filename, err.Error())
		}
	}

	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("close: %w: %w", err, btrieve.StatusCloseError)
	}

	if s.options.Cache != nil {
		for _, row := range s.rows {
			s.options.Cache.Del(row.version)
			if p := row.pending; p != nil && p.image != nil {
				s.options.Cache.Del(p.image.version)
			}
		}
	}

	return nil
}

func (s *Store) validateLength(data []byte, limit int) error {
	if s.attributes.Variable() {
		if len(data) < s.attributes.FixedRecordLength || len(data) > limit {
			return fmt.Errorf("record of %d bytes: %w", len(data), btrieve.StatusDataLengthError)
		}
		return nil
	}
	if len(data) != s.attributes.FixedRecordLength {
		return fmt.Errorf("record of %d bytes, expected %d: %w", len(data), s.attributes.FixedRecordLength, btrieve.StatusDataLengthError)
	}
	return nil
}

// keys computes the key of record for every index. Null keys are left out.
func (s *Store) keys(data []byte) map[btrieve.Index][]byte {
	keys := make(map[btrieve.Index][]byte, len(s.indexes))
	for n, index := range s.indexes {
		key := index.attributes.Key(data)
		if index.attributes.NullKey(key) {
			continue
		}
		keys[n] = key
	}
	return keys
}

func (s *Store) checkUnique(keys map[btrieve.Index][]byte, self *Row, owner uint64) error {
	for n, key := range keys {
		index := s.indexes[n]
		if conflict := index.conflict(key, self, owner); conflict != nil {
			return fmt.Errorf("index %s collides with position %d: %w", n, conflict.row.Position, btrieve.StatusDuplicateKeyValue)
		}
	}
	return nil
}

func (s *Store) encodeStored(data []byte) []byte {
	if s.attributes.KeyOnly {
		return nil
	}
	return compressRecord(s.attributes.RecordCompression, data)
}

// logged is the form of a record written to the log. Key only files log
// the plain record since they keep no stored form in memory.
func (s *Store) logged(data []byte) []byte {
	if s.attributes.KeyOnly {
		return data
	}
	return compressRecord(s.attributes.RecordCompression, data)
}

func (s *Store) decodeStored(stored []byte) ([]byte, error) {
	if s.attributes.KeyOnly {
		return stored, nil
	}
	return decompressRecord(s.attributes.RecordCompression, stored)
}

// record returns a private copy of the record held by row as owner sees it.
func (s *Store) record(row *Row, owner uint64) ([]byte, error) {

	stored, version, entries := row.seen(owner)

	if s.attributes.KeyOnly {
		data := make([]byte, s.attributes.FixedRecordLength)
		for n, e := range entries {
			s.indexes[n].attributes.SetKey(data, e.key)
		}
		return data, nil
	}

	if s.attributes.RecordCompression == btrieve.RecordCompressionModeNone || s.options.Cache == nil {
		return s.decodeStored(stored)
	}

	if data, found := s.options.Cache.Get(version); found {
		return append([]byte{}, data...), nil
	}
	data, err := s.decodeStored(stored)
	if err != nil {
		return nil, err
	}
	s.options.Cache.Set(version, data, int64(len(data)))
	return append([]byte{}, data...), nil
}

// autoincrement fills zero autoincrement fields with max+1.
func (s *Store) autoincrement(data []byte) {
	for _, index := range s.indexes {
		i := index.attributes.Autoincrement()
		if i < 0 {
			continue
		}
		segment := index.attributes.Segments[i]
		if segment.Offset+segment.Length > len(data) {
			continue
		}
		field := data[segment.Offset : segment.Offset+segment.Length]
		if btrieve.ReadInt(field) == 0 {
			btrieve.PutInt(field, index.maxAutoincrement()+1)
		}
	}
}

// visibleRow returns the row at position if owner sees it.
func (s *Store) visibleRow(position int64, owner uint64) (*Row, error) {
	row, exists := s.rows[position]
	if !exists || !row.visible(owner) {
		return nil, fmt.Errorf("position %d: %w", position, btrieve.StatusPositionNotSet)
	}
	return row, nil
}

// Insert adds a record and returns its position together with the record
// as stored, autoincrement fields filled in. An owner other than Committed
// keeps the record pending until Commit.
func (s *Store) Insert(owner uint64, data []byte) (int64, []byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.validateLength(data, btrieve.MaximumRecordLength)
	if err != nil {
		return 0, nil, err
	}

	data = append([]byte{}, data...)
	s.autoincrement(data)

	s.nextSeq++
	row := &Row{
		Position: s.nextPosition,
		created:  s.nextSeq,
	}
	if owner != Committed {
		row.pending = &pending{owner: owner}
	}
	err = s.insertRow(row, data, nil, true)
	if err != nil {
		return 0, nil, err
	}

	return row.Position, append([]byte{}, data...), nil
}

func (s *Store) insertRow(row *Row, data []byte, seqs map[btrieve.Index]uint64, persist bool) error {

	if _, exists := s.rows[row.Position]; exists {
		return fmt.Errorf("position %d is in use: %w", row.Position, btrieve.StatusInvalidRecordAddress)
	}

	keys := s.keys(data)
	err := s.checkUnique(keys, row, row.owner())
	if err != nil {
		return err
	}

	if persist {
		err := s.log(row, commandInsert, &rowPayload{
			Position: row.Position,
			Data:     s.logged(data),
			Seq:      row.created,
			Seqs:     seqs,
		})
		if err != nil {
			return err
		}
	}

	row.stored = s.encodeStored(data)
	row.version = versions.Add(1)
	row.entries = make(map[btrieve.Index]*entry, len(keys))
	for n, key := range keys {
		seq := row.created
		if v, ok := seqs[n]; ok {
			seq = v
		}
		e := &entry{key: key, seq: seq, row: row, current: true, committed: row.pending == nil}
		s.indexes[n].tree.ReplaceOrInsert(e)
		row.entries[n] = e
		s.nextSeq = max(s.nextSeq, seq)
	}
	s.nextSeq = max(s.nextSeq, row.created)
	s.rows[row.Position] = row
	s.physical.ReplaceOrInsert(row)
	s.nextPosition = max(s.nextPosition, row.Position+1)
	if row.pending != nil {
		s.pending[row.Position] = row
	}

	return nil
}

// Version identifies the content of the record at position as owner sees it.
func (s *Store) Version(owner uint64, position int64) (uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	row, err := s.visibleRow(position, owner)
	if err != nil {
		return 0, err
	}
	_, version, _ := row.seen(owner)
	return version, nil
}

// Read returns a copy of the record at position together with its version.
func (s *Store) Read(owner uint64, position int64) ([]byte, uint64, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	row, err := s.visibleRow(position, owner)
	if err != nil {
		return nil, 0, err
	}
	data, err := s.record(row, owner)
	if err != nil {
		return nil, 0, err
	}
	_, version, _ := row.seen(owner)
	return data, version, nil
}

// Update replaces the record at position. A non zero version must match
// the current one.
func (s *Store) Update(owner uint64, position int64, data []byte, version uint64) error {
	return s.update(owner, position, data, version, btrieve.MaximumRecordLength)
}

// Rewrite is Update for records edited by chunk, which may grow up to
// MaximumChunkedRecordLength.
func (s *Store) Rewrite(owner uint64, position int64, data []byte, version uint64) error {
	return s.update(owner, position, data, version, btrieve.MaximumChunkedRecordLength)
}

func (s *Store) update(owner uint64, position int64, data []byte, version uint64, limit int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	row, err := s.visibleRow(position, owner)
	if err != nil {
		return err
	}
	err = s.claim(row, owner)
	if err != nil {
		return err
	}
	if version != 0 && version != row.version {
		return fmt.Errorf("position %d changed since it was read: %w", position, btrieve.StatusConflict)
	}
	err = s.validateLength(data, limit)
	if err != nil {
		return err
	}

	return s.updateRow(row, append([]byte{}, data...), nil, owner, true)
}

// updateRow rewrites a row. A fresh update comes from a caller and gets new
// sequences for the keys that move; a replayed one brings them in seqs.
func (s *Store) updateRow(row *Row, data []byte, seqs map[btrieve.Index]uint64, owner uint64, fresh bool) error {

	keys := s.keys(data)

	// only keys that change are checked and moved
	changed := map[btrieve.Index][]byte{}
	for n, index := range s.indexes {
		key, indexed := keys[n]
		old, wasIndexed := row.entries[n]
		if indexed && wasIndexed && index.compare(old.key, key) == 0 {
			continue
		}
		if !indexed && !wasIndexed {
			continue
		}
		if fresh && !index.attributes.Modifiable {
			return fmt.Errorf("index %s is not modifiable: %w", n, btrieve.StatusModifiableKeyValueError)
		}
		changed[n] = key
	}

	unique := map[btrieve.Index][]byte{}
	for n, key := range changed {
		if key != nil {
			unique[n] = key
		}
	}
	err := s.checkUnique(unique, row, owner)
	if err != nil {
		return err
	}

	if fresh {
		seqs = map[btrieve.Index]uint64{}
		for n, key := range changed {
			if key != nil {
				s.nextSeq++
				seqs[n] = s.nextSeq
			}
		}

		s.hold(row, owner)
		err := s.log(row, commandUpdate, &rowPayload{
			Position: row.Position,
			Data:     s.logged(data),
			Seqs:     s.persistedSeqs(row, changed, seqs),
		})
		if err != nil {
			return err
		}
		if row.pending == nil {
			s.dead++
		}
	}

	for n, key := range changed {
		index := s.indexes[n]
		if old, ok := row.entries[n]; ok {
			s.retire(index, old)
			delete(row.entries, n)
		}
		if key == nil {
			continue
		}
		seq, ok := seqs[n]
		if !ok {
			seq = row.created
		}
		e := &entry{key: key, seq: seq, row: row, current: true, committed: row.pending == nil}
		index.tree.ReplaceOrInsert(e)
		row.entries[n] = e
		s.nextSeq = max(s.nextSeq, seq)
	}

	// the committed image of a pending row keeps its cached record
	if p := row.pending; s.options.Cache != nil && (p == nil || p.image == nil || p.image.version != row.version) {
		s.options.Cache.Del(row.version)
	}
	row.stored = s.encodeStored(data)
	row.version = versions.Add(1)

	return nil
}

// persistedSeqs lists the index sequences of row, once changed keys move,
// that differ from its insertion sequence.
func (s *Store) persistedSeqs(row *Row, changed map[btrieve.Index][]byte, seqs map[btrieve.Index]uint64) map[btrieve.Index]uint64 {
	result := map[btrieve.Index]uint64{}
	for n, e := range row.entries {
		if _, moving := changed[n]; !moving && e.seq != row.created {
			result[n] = e.seq
		}
	}
	for n, key := range changed {
		if seq, ok := seqs[n]; ok && key != nil && seq != row.created {
			result[n] = seq
		}
	}
	return result
}

// Delete removes the record at position. A non zero version must match the
// current one.
func (s *Store) Delete(owner uint64, position int64, version uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	row, err := s.visibleRow(position, owner)
	if err != nil {
		return err
	}
	err = s.claim(row, owner)
	if err != nil {
		return err
	}
	if version != 0 && version != row.version {
		return fmt.Errorf("position %d changed since it was read: %w", position, btrieve.StatusConflict)
	}

	return s.deleteRow(row, owner)
}

func (s *Store) deleteRow(row *Row, owner uint64) error {

	s.hold(row, owner)
	err := s.log(row, commandDelete, &rowPayload{
		Position: row.Position,
	})
	if err != nil {
		return err
	}

	p := row.pending
	if p == nil {
		s.dead += 2
		s.removeRow(row)
		return nil
	}
	if p.image == nil {
		s.removeRow(row)
		return nil
	}

	for n, e := range row.entries {
		s.retire(s.indexes[n], e)
	}
	row.entries = map[btrieve.Index]*entry{}
	p.gone = true

	return nil
}

// removeRow drops a row from memory together with its committed image.
func (s *Store) removeRow(row *Row) {

	for n, e := range row.entries {
		s.indexes[n].tree.Delete(e)
	}
	if p := row.pending; p != nil && p.image != nil {
		for n, e := range p.image.entries {
			s.indexes[n].tree.Delete(e)
		}
		if s.options.Cache != nil {
			s.options.Cache.Del(p.image.version)
		}
	}
	s.physical.Delete(row)
	delete(s.rows, row.Position)
	delete(s.pending, row.Position)
	if s.options.Cache != nil {
		s.options.Cache.Del(row.version)
	}
}

// addIndex builds an index over the current rows, assigning the next
// index number when none is given.
func (s *Store) addIndex(attributes btrieve.IndexAttributes) (*Index, error) {

	err := attributes.Validate(s.attributes)
	if err != nil {
		return nil, err
	}

	next := btrieve.Index(len(s.indexes))
	if attributes.Index == btrieve.IndexNone {
		attributes.Index = next
	}
	if attributes.Index != next {
		return nil, fmt.Errorf("index %s, next index is %s: %w", attributes.Index, next, btrieve.StatusInvalidIndexNumber)
	}
	if !attributes.Index.Valid() || attributes.Index == btrieve.IndexSystem {
		return nil, fmt.Errorf("too many indexes: %w", btrieve.StatusNumberOfIndexes)
	}

	index, err := newIndex(attributes)
	if err != nil {
		return nil, err
	}

	entries := make([]*entry, 0, len(s.rows))
	for _, row := range s.rows {
		data, err := s.record(row, Committed)
		if err != nil {
			return nil, err
		}
		key := attributes.Key(data)
		if attributes.NullKey(key) {
			continue
		}
		if conflict := index.conflict(key, nil, Committed); conflict != nil {
			return nil, fmt.Errorf("positions %d and %d share a key: %w", conflict.row.Position, row.Position, btrieve.StatusDuplicateKeyValue)
		}
		e := &entry{key: key, seq: row.created, row: row, current: true, committed: true}
		index.tree.ReplaceOrInsert(e)
		entries = append(entries, e)
	}

	for _, e := range entries {
		e.row.entries[attributes.Index] = e
	}
	s.indexes[attributes.Index] = index

	return index, nil
}

// settled fails while a transaction has changes pending, since indexes
// cannot be rebuilt under them.
func (s *Store) settled() error {
	if len(s.pending) > 0 || len(s.journal) > 0 {
		return fmt.Errorf("a transaction has pending changes: %w", btrieve.StatusFileInUse)
	}
	return nil
}

func (s *Store) CreateIndex(attributes btrieve.IndexAttributes) (btrieve.Index, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.settled(); err != nil {
		return btrieve.IndexNone, err
	}
	return s.createIndex(attributes, true)
}

func (s *Store) createIndex(attributes btrieve.IndexAttributes, persist bool) (btrieve.Index, error) {

	if s.attributes.KeyOnly {
		return btrieve.IndexNone, fmt.Errorf("key only files have a single index: %w", btrieve.StatusOperationNotAllowed)
	}

	index, err := s.addIndex(attributes)
	if err != nil {
		return btrieve.IndexNone, err
	}

	if persist {
		err := s.persist(commandIndex, index.attributes)
		if err != nil {
			s.removeIndex(index.attributes.Index)
			return btrieve.IndexNone, err
		}
	}

	glog.V(2).Infof("store '%s': index %s created", s.filename, index.attributes.Index)

	return index.attributes.Index, nil
}

// DropIndex removes an index. Higher indexes are renumbered down by one so
// numbers stay contiguous from zero.
func (s *Store) DropIndex(n btrieve.Index) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.settled(); err != nil {
		return err
	}
	return s.dropIndex(n, true)
}

func (s *Store) dropIndex(n btrieve.Index, persist bool) error {

	if s.attributes.KeyOnly {
		return fmt.Errorf("key only files have a single index: %w", btrieve.StatusOperationNotAllowed)
	}
	if _, exists := s.indexes[n]; !exists {
		return fmt.Errorf("index %s: %w", n, btrieve.StatusInvalidIndexNumber)
	}

	if persist {
		err := s.persist(commandDropIndex, &dropIndexPayload{Index: n})
		if err != nil {
			return err
		}
		s.dead += 2
	}

	s.removeIndex(n)

	glog.V(2).Infof("store '%s': index %s dropped", s.filename, n)

	return nil
}

func (s *Store) removeIndex(n btrieve.Index) {

	delete(s.indexes, n)
	for _, row := range s.rows {
		delete(row.entries, n)
	}

	last := btrieve.Index(len(s.indexes))
	for i := n + 1; i <= last; i++ {
		index := s.indexes[i]
		delete(s.indexes, i)
		index.attributes.Index = i - 1
		s.indexes[i-1] = index
		for _, row := range s.rows {
			if e, ok := row.entries[i]; ok {
				delete(row.entries, i)
				row.entries[i-1] = e
			}
		}
	}
	s.generation++
}

func (s *Store) index(n btrieve.Index) (*Index, error) {
	index, exists := s.indexes[n]
	if !exists {
		return nil, fmt.Errorf("index %s: %w", n, btrieve.StatusInvalidIndexNumber)
	}
	return index, nil
}

func (s *Store) SetOwner(mode btrieve.OwnerMode, name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !mode.Valid() {
		return fmt.Errorf("owner mode %d: %w", mode, btrieve.StatusInvalidOption)
	}

	if mode == btrieve.OwnerModeNone {
		if s.owner.Mode == btrieve.OwnerModeNone {
			return nil
		}
		return s.setOwner(ownerPayload{})
	}

	if s.owner.Mode != btrieve.OwnerModeNone {
		return fmt.Errorf("owner already set: %w", btrieve.StatusOwnerAlreadySet)
	}
	if name == "" || len(name) > MaximumOwnerNameLength {
		return fmt.Errorf("owner name length %d: %w", len(name), btrieve.StatusInvalidOwner)
	}

	return s.setOwner(ownerPayload{Mode: mode, Hash: hashOwner(name)})
}

func (s *Store) setOwner(owner ownerPayload) error {
	err := s.persist(commandOwner, &owner)
	if err != nil {
		return err
	}
	if s.owner.Mode != btrieve.OwnerModeNone {
		s.dead++
	}
	s.owner = owner
	return nil
}

// CheckOwner validates an owner name for an open. Read-allowed owner modes
// accept read-only opens without the name.
func (s *Store) CheckOwner(name string, readOnly bool) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.owner.Mode == btrieve.OwnerModeNone {
		return nil
	}
	if name == "" && readOnly && s.owner.Mode.ReadAllowed() {
		return nil
	}
	if hashOwner(name) != s.owner.Hash {
		return fmt.Errorf("owner name does not match: %w", btrieve.StatusInvalidOwner)
	}
	return nil
}

// SetContinuous suspends log compaction while on. Turning it off compacts
// right away when needed.
func (s *Store) SetContinuous(on bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.continuous = on
	if !on && s.file != nil && s.needsCompaction() {
		return s.compact()
	}
	return nil
}

func (s *Store) Continuous() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.continuous
}

// Information fills the store part of a file information report, counted
// as owner sees the records.
func (s *Store) Information(owner uint64) *btrieve.FileInformation {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	info := &btrieve.FileInformation{
		FileName:            s.filename,
		Attributes:          s.attributes,
		RecordCount:         s.count(owner),
		IndexCount:          len(s.indexes),
		ContinuousOperation: s.continuous,
		OwnerMode:           s.owner.Mode,
	}
	for i := btrieve.Index(0); int(i) < len(s.indexes); i++ {
		index := s.indexes[i]
		info.KeySegmentCount += len(index.attributes.Segments)
		info.Indexes = append(info.Indexes, btrieve.IndexInformation{
			Attributes:       index.attributes,
			UniqueValueCount: index.uniqueValues(owner),
		})
	}
	return info
}
