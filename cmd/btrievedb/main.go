package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/btrievedb/bootstrap"
	"github.com/fulldump/btrievedb/configuration"
)

var banner = `
 ____  _        _                 ____  ____  
| __ )| |_ _ __(_) _____   _____ |  _ \| __ ) 
|  _ \| __| '__| |/ _ \ \ / / _ \| | | |  _ \ 
| |_) | |_| |  | |  __/\ V /  __/| |_| | |_) |
|____/ \__|_|  |_|\___| \_/ \___||____/|____/ 
                          version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _ := bootstrap.Bootstrap(&c)
	start()
}
