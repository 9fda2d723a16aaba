package transport

import (
	"net/http"

	"go.uber.org/atomic"
)

type fetcherHolder struct {
	fetcher Fetcher
}

var (
	builtin = mustNew(DefaultConfig("linkpager"))

	defaultFetcher atomic.Pointer[fetcherHolder]
)

func mustNew(cfg Config) *HTTPFetcher {
	f, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the fetcher used when none is supplied explicitly.
func Default() Fetcher {
	if h := defaultFetcher.Load(); h != nil {
		return h.fetcher
	}
	return builtin
}

// SetDefault overrides the process-wide default fetcher, e.g. in environments
// where the stock net/http client cannot reach the network.
// SetDefault(nil) restores the built-in HTTP fetcher.
func SetDefault(f Fetcher) {
	if f == nil {
		defaultFetcher.Store(nil)
		return
	}
	defaultFetcher.Store(&fetcherHolder{fetcher: f})
}

// SetDefaultClient installs an HTTP fetcher backed by client as the default.
func SetDefaultClient(client *http.Client) error {
	cfg := DefaultConfig("linkpager")
	cfg.HTTPClient = client
	f, err := New(cfg)
	if err != nil {
		return err
	}
	SetDefault(f)
	return nil
}
