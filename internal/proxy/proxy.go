// Package proxy forwards non-API traffic to the frontend dev server.
package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// New returns a reverse proxy handler targeting the client origin. WebSocket
// upgrades tunnel through httputil.ReverseProxy untouched.
func New(clientOrigin string) (http.Handler, error) {
	target, err := url.Parse(clientOrigin)
	if err != nil {
		return nil, fmt.Errorf("parsing client origin: %w", err)
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("proxying to client failed", "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	return rp, nil
}
