package bootstrap

import (
	"context"
	"crypto/tls"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/fulldump/box"
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/api"
	"github.com/fulldump/btrievedb/configuration"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/service"
)

var VERSION = "dev"

// Logging applies the logging options of c to glog.
func Logging(c *configuration.Configuration) {
	flag.Set("logtostderr", strconv.FormatBool(c.LogToStderr))
	flag.Set("v", strconv.Itoa(c.Verbosity))
}

func Bootstrap(c *configuration.Configuration) (start, stop func()) {

	f, err := configuration.LoadFile(c)
	if err != nil {
		glog.Exitf("config: %s", err)
	}
	Logging(c)

	config, err := f.Database()
	if err != nil {
		glog.Exitf("config: %s", err)
	}

	db := database.NewDatabase(config)
	s := service.NewService(db)

	b := api.Build(s, VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog,
		api.PrettyErrorInterceptor,
		api.InterceptorUnavailable(db),
		api.RecoverFromPanic,
	)

	server := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	https := c.HttpsEnabled || c.HttpsSelfsigned
	if c.HttpsSelfsigned {
		glog.Info("HTTPS self signed")
		certificate, err := selfSignedCertificate()
		if err != nil {
			glog.Exitf("self signed certificate: %s", err)
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{certificate},
		}
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		glog.Exitf("listen: %s", err)
	}
	glog.Infof("listening on %s", c.HttpAddr)

	once := sync.Once{}
	stop = func() {
		once.Do(func() {
			server.Shutdown(context.Background())
			s.Close()
			db.Stop()
			glog.Flush()
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		glog.Infof("signal received: %s", sig)
		stop()
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Start()
			if err != nil {
				glog.Errorf("database: %s", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if https {
				err = server.ServeTLS(ln, "", "")
			} else {
				err = server.Serve(ln)
			}
			if err != nil && err != http.ErrServerClosed {
				glog.Errorf("http: %s", err)
			}
		}()

		wg.Wait()
	}

	return
}
