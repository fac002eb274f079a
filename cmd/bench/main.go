package main

import (
	"fmt"
	"strings"

	"github.com/fulldump/goconfig"
	"github.com/golang/glog"
)

type Config struct {
	Test    string `usage:"name of the test: ALL | INSERT | REMOVE"`
	Base    string `usage:"base URL, local starts a server in process, empty drives the engine directly"`
	N       int64  `usage:"number of records"`
	Workers int    `usage:"number of workers"`
	Batch   int    `usage:"records per transaction or per HTTP insert"`
	Codec   string `usage:"command log compression: none|snappy|lz4|zstd"`
}

var cleanups []func()

func main() {

	defer func() {
		fmt.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:    "insert",
		Base:    "",
		N:       1_000_000,
		Workers: 16,
		Batch:   1000,
		Codec:   "snappy",
	}
	goconfig.Read(&c)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestInsert(c)
		TestRemove(c)
	case "INSERT":
		TestInsert(c)
	case "REMOVE":
		TestRemove(c)
	default:
		glog.Exitf("Unknown test %s", c.Test)
	}

}
