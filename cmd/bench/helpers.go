package main

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fulldump/btrievedb/bootstrap"
	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/client"
	"github.com/fulldump/btrievedb/configuration"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/store"
)

type JSON = map[string]any

// RecordLength is the size of every benchmark record: a little endian id
// followed by padding.
const RecordLength = 64

func Parallel(workers int, f func(worker int)) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			f(worker)
		}(i)
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "btrievedb_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

func Record(id int64) []byte {
	record := make([]byte, RecordLength)
	binary.LittleEndian.PutUint64(record, uint64(id))
	copy(record[8:], "btrievedb bench record")
	return record
}

func Key(id int64) []byte {
	return Record(id)[:8]
}

func FileName() string {
	return "bench-" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".btr"
}

func FileAttributes() (btrieve.FileAttributes, []btrieve.IndexAttributes) {
	file := btrieve.DefaultFileAttributes()
	file.FixedRecordLength = RecordLength

	index := btrieve.DefaultIndexAttributes()
	index.Segments = []btrieve.KeySegment{
		{Offset: 0, Length: 8, DataType: btrieve.DataTypeUnsignedBinary},
	}

	return file, []btrieve.IndexAttributes{index}
}

// OpenDatabase loads an engine on a scratch directory.
func OpenDatabase(c Config) *database.Database {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	codec, err := store.ParseCodec(c.Codec)
	if err != nil {
		panic(err)
	}

	db := database.NewDatabase(&database.Config{
		Dir:   dir,
		Codec: codec,
	})
	if err := db.Load(); err != nil {
		panic(err)
	}
	cleanups = append(cleanups, func() {
		db.Stop()
	})

	return db
}

func CreateFile(db *database.Database) string {
	name := FileName()
	file, indexes := FileAttributes()

	c := client.New(db, 0, 0)
	defer c.Stop()

	err := c.FileCreate(file, indexes, name, btrieve.CreateModeNoOverwrite)
	if err != nil {
		panic(err)
	}

	return name
}

func CreateRemoteFile(base string) string {
	name := FileName()
	file, indexes := FileAttributes()

	payload, _ := json.Marshal(JSON{
		"name":    name,
		"file":    file,
		"indexes": indexes,
	})

	req, _ := http.NewRequest("POST", base+"/v1/files", bytes.NewReader(payload))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		io.Copy(os.Stdout, resp.Body)
		panic(fmt.Sprintf("create file: %s", resp.Status))
	}

	return name
}

func InsertPayload(ids []int64) []byte {
	records := make([]string, len(ids))
	for i, id := range ids {
		records[i] = base64.StdEncoding.EncodeToString(Record(id))
	}
	payload, _ := json.Marshal(JSON{"records": records})
	return payload
}

func CreateServer(c *Config) (start, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Dir = dir
	conf.ShowBanner = false
	conf.LogCompression = c.Codec
	c.Base = "http://" + conf.HttpAddr

	return bootstrap.Bootstrap(&conf)
}

func Report(n int64, took time.Duration) {
	fmt.Println("sent:", n)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f rows/sec\n", float64(n)/took.Seconds())
}

// Progress prints the remaining items every second until done is closed.
func Progress(items *int64, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fmt.Println("items:", max(0, atomic.LoadInt64(items)))
			case <-done:
				return
			}
		}
	}()
}
