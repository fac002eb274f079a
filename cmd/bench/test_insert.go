package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/client"
)

func TestInsert(c Config) {
	if c.Base != "" {
		testInsertRemote(c)
		return
	}

	db := OpenDatabase(c)
	name := CreateFile(db)

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
			err := session.TransactionBegin(btrieve.TransactionModeConcurrentWriteWait, btrieve.LockModeNone)
			if err != nil {
				fmt.Println("ERROR: begin:", err.Error())
				os.Exit(4)
			}
			inserted := 0
			for ; inserted < c.Batch; inserted++ {
				n := atomic.AddInt64(&items, -1)
				if n < 0 {
					break
				}
				_, err := f.RecordCreate(Record(n))
				if err != nil {
					fmt.Println("ERROR: insert:", err.Error())
					os.Exit(5)
				}
			}
			err = session.TransactionEnd()
			if err != nil {
				fmt.Println("ERROR: end:", err.Error())
				os.Exit(6)
			}
			if inserted < c.Batch {
				return
			}
		}
	})

	Report(c.N, time.Since(t0))
}

func testInsertRemote(c Config) {

	if c.Base == "local" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
		time.Sleep(100 * time.Millisecond)
	}

	name := CreateRemoteFile(c.Base)

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
	}

	items := c.N
	done := make(chan struct{})
	Progress(&items, done)
	defer close(done)

	t0 := time.Now()
	Parallel(c.Workers, func(worker int) {
		for {
			ids := make([]int64, 0, c.Batch)
			for len(ids) < c.Batch {
				n := atomic.AddInt64(&items, -1)
				if n < 0 {
					break
				}
				ids = append(ids, n)
			}
			if len(ids) == 0 {
				return
			}

			req, err := http.NewRequest("POST", c.Base+"/v1/files/"+name+":insert", bytes.NewReader(InsertPayload(ids)))
			if err != nil {
				fmt.Println("ERROR: new request:", err.Error())
				os.Exit(3)
			}

			resp, err := httpClient.Do(req)
			if err != nil {
				fmt.Println("ERROR: do request:", err.Error())
				os.Exit(4)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				fmt.Println("ERROR: insert:", resp.Status)
				os.Exit(5)
			}
		}
	})

	Report(c.N, time.Since(t0))
}
