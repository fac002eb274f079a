package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fulldump/box"
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
)

func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if err := recover(); err != nil {
				glog.Errorf("panic: %v\n%s", err, debug.Stack())
				box.SetError(ctx, fmt.Errorf("panic: %v: %w", err, btrieve.StatusInternalError))
			}
		}()
		next(ctx)
	}
}

// AccessLog writes one glog line per request.
func AccessLog(next box.H) box.H {
	return func(ctx context.Context) {
		r := box.GetRequest(ctx)
		now := time.Now()
		defer func() {
			glog.Infof("ACCESS: %s %s %s %s %v", now.UTC().Format(time.RFC3339Nano), formatRemoteAddr(r), r.Method, r.URL.String(), time.Since(now))
		}()

		next(ctx)
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	i := strings.LastIndex(r.RemoteAddr, ":")
	if i < 0 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[0:i]
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status != database.StatusOperating {
				box.SetError(ctx, fmt.Errorf("temporary unavailable: %s: %w", status, btrieve.StatusRecordManagerInactive))
				return
			}
			next(ctx)
		}
	}
}

var ErrUnauthorized = fmt.Errorf("unauthorized")

// Authenticate requires the X-Api-Key and X-Api-Secret headers. An empty
// key disables the check.
func Authenticate(apiKey, apiSecret string) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			if apiKey == "" {
				next(ctx)
				return
			}
			r := box.GetRequest(ctx)
			if r.Header.Get("X-Api-Key") != apiKey || r.Header.Get("X-Api-Secret") != apiSecret {
				box.SetError(ctx, ErrUnauthorized)
				return
			}
			next(ctx)
		}
	}
}
