package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/client"
)

// TestRemove fills a file and deletes every record by key from several
// sessions at once.
func TestRemove(c Config) {

	db := OpenDatabase(c)
	name := CreateFile(db)

	loader := client.New(db, 0, 0)
	f, err := loader.FileOpen(name, "", btrieve.OpenModeNormal)
	if err != nil {
		panic(err)
	}
	fmt.Println("Loading", c.N, "records...")
	for id := int64(0); id < c.N; id += int64(c.Batch) {
		records := [][]byte{}
		for n := id; n < id+int64(c.Batch) && n < c.N; n++ {
			records = append(records, Record(n))
		}
		result, err := f.BulkCreate(records)
		if err != nil || result.Status != btrieve.StatusNoError {
			fmt.Println("ERROR: load:", err, result)
			os.Exit(2)
		}
	}
	loader.Stop()

	items := c.N
	done := make(chan struct{})
	Progress(&items, done)
	defer close(done)

	t0 := time.Now()
	Parallel(c.Workers, func(worker int) {

		session := client.New(db, 0, worker+1)
		defer session.Stop()

		f, err := session.FileOpen(name, "", btrieve.OpenModeNormal)
		if err != nil {
			fmt.Println("ERROR: open:", err.Error())
			os.Exit(3)
		}

		for {
			n := atomic.AddInt64(&items, -1)
			if n < 0 {
				return
			}
			_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, Key(n), btrieve.LockModeSingleWait)
			if err != nil {
				fmt.Println("ERROR: retrieve:", err.Error())
				os.Exit(4)
			}
			err = f.RecordDelete()
			if err != nil {
				fmt.Println("ERROR: delete:", err.Error())
				os.Exit(5)
			}
		}
	})

	Report(c.N, time.Since(t0))

	check := client.New(db, 0, 0)
	defer check.Stop()
	g, _ := check.FileOpen(name, "", btrieve.OpenModeNormal)
	info, err := g.GetInformation()
	if err == nil {
		fmt.Println("remaining:", info.RecordCount)
	}
}
