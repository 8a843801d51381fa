package gateway

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errNoUpstream = errors.New("gateway: no upstream configured and not_found_json is disabled")

// newUpstreamProxy builds the /api/* handler. Requests are forwarded
// to the configured upstream origin with the /api prefix stripped, so
// /api/session/abc becomes <upstream>/session/abc.
func (s *Server) newUpstreamProxy() (gin.HandlerFunc, error) {
	target, err := url.Parse(s.cfg.Upstream)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("gateway: upstream must be an absolute URL")
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = joinURLPath(target.Path, strings.TrimPrefix(req.URL.Path, "/api"))
			req.Host = target.Host
			if _, ok := req.Header["User-Agent"]; !ok {
				// Avoid inheriting Go's default agent.
				req.Header.Set("User-Agent", "")
			}
		},
		ModifyResponse: func(resp *http.Response) error {
			// Some scoring backends answer session payloads with a
			// text content type; downstream parsing wants JSON.
			if resp.StatusCode == http.StatusOK && strings.Contains(resp.Request.URL.Path, "/session/") {
				resp.Header.Set("Content-Type", "application/json; charset=utf-8")
			}
			if s.metrics != nil {
				s.metrics.ObserveProxy(resp.StatusCode)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.Warn("upstream request failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			if s.metrics != nil {
				s.metrics.ObserveProxy(http.StatusBadGateway)
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream request failed"}`))
		},
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}

// joinURLPath joins the upstream base path with the stripped request
// path without doubling or dropping the slash between them.
func joinURLPath(base, p string) string {
	if p == "" {
		p = "/"
	}
	switch {
	case strings.HasSuffix(base, "/") && strings.HasPrefix(p, "/"):
		return base + p[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(p, "/"):
		return base + "/" + p
	default:
		return base + p
	}
}
