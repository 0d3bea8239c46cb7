package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quizgrid/backend/pkg/response"
)

type route struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// Proxy forwards authorized requests to the owning backend service by path
// prefix. Upstream connection failures surface as 503, never as a dropped
// request.
type Proxy struct {
	routes []route
	logger *zap.Logger
}

// NewProxy builds the gateway routing table: /auth, /question and /quiz each
// forward to their configured upstream.
func NewProxy(authURL, questionURL, quizURL string, logger *zap.Logger) (*Proxy, error) {
	p := &Proxy{logger: logger}
	for _, entry := range []struct {
		prefix string
		target string
	}{
		{"/auth", authURL},
		{"/question", questionURL},
		{"/quiz", quizURL},
	} {
		u, err := url.Parse(entry.target)
		if err != nil {
			return nil, fmt.Errorf("parse upstream %s: %w", entry.prefix, err)
		}
		rp := httputil.NewSingleHostReverseProxy(u)
		rp.ErrorHandler = p.upstreamError(entry.prefix)
		p.routes = append(p.routes, route{prefix: entry.prefix, proxy: rp})
	}
	return p, nil
}

// Handle forwards the request to the upstream owning its path prefix.
func (p *Proxy) Handle(c *gin.Context) {
	path := c.Request.URL.Path
	for _, r := range p.routes {
		if strings.HasPrefix(path, r.prefix) {
			r.proxy.ServeHTTP(c.Writer, c.Request)
			return
		}
	}
	response.NotFound(c, "no route for path")
}

func (p *Proxy) upstreamError(prefix string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		p.logger.Error("upstream unavailable",
			zap.String("prefix", prefix),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(response.Body{Success: false, Error: "upstream service unavailable"})
	}
}
