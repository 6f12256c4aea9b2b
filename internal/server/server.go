// Package server is the web dashboard: upload an export, pick a user and a
// date range, and get the analysis, charts and PDF report.
package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/Zuo-Peng/chatlens/internal/analyze"
	"github.com/Zuo-Peng/chatlens/internal/chart"
	"github.com/Zuo-Peng/chatlens/internal/config"
	"github.com/Zuo-Peng/chatlens/internal/filter"
	"github.com/Zuo-Peng/chatlens/internal/parse"
	"github.com/Zuo-Peng/chatlens/internal/report"
	"github.com/gin-gonic/gin"
)

//go:embed all:web
var webFS embed.FS

const dateLayout = "2006-01-02"

type Options struct {
	Analyzer       *analyze.Analyzer
	Charts         *chart.Renderer
	Report         report.Options
	MaxUploadBytes int64
}

// Server holds the Gin engine and dependencies for the web dashboard.
type Server struct {
	engine  *gin.Engine
	store   *Store
	opts    Options
	started time.Time
}

// New creates a web server. Zero options fall back to defaults.
func New(opts Options) *Server {
	if opts.Analyzer == nil {
		opts.Analyzer = analyze.New(analyze.Options{})
	}
	if opts.Charts == nil {
		opts.Charts = chart.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	engine.MaxMultipartMemory = opts.MaxUploadBytes

	s := &Server{
		engine:  engine,
		store:   NewStore(),
		opts:    opts,
		started: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the routes, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server on addr. Blocks until the server is stopped.
func (s *Server) Start(addr string) error {
	log.Printf("dashboard listening on http://%s", addr)
	return s.engine.Run(addr)
}

// serveEmbedded reads a file from the embedded FS and writes it with the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")
	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).Round(time.Second).String(),
			"uploads": s.store.Len(),
		})
	})

	api := s.engine.Group("/api/uploads")
	api.POST("", s.handleUpload)
	api.GET("/:id", s.withUpload(s.handleInfo))
	api.DELETE("/:id", s.handleDelete)
	api.GET("/:id/analysis", s.withUpload(s.handleAnalysis))
	api.GET("/:id/charts/:name", s.withUpload(s.handleChart))
	api.GET("/:id/report", s.withUpload(s.handleReport))
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var pe *parse.ParseError
	switch {
	case errors.As(err, &pe), errors.Is(err, analyze.ErrEmpty), errors.Is(err, filter.ErrNoMessages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chart.ErrNoData):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			abort(c, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.opts.MaxUploadBytes))
			return
		}
		abort(c, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	msgs, err := parse.Parse(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}

	u := s.store.Put(fh.Filename, msgs)
	log.Printf("upload %s: %s, %d messages", u.ID, fh.Filename, len(msgs))
	c.JSON(http.StatusCreated, u.Info())
}

func (s *Server) withUpload(h func(*gin.Context, *Upload)) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := s.store.Get(c.Param("id"))
		if !ok {
			abort(c, http.StatusNotFound, fmt.Errorf("upload not found: %s", c.Param("id")))
			return
		}
		h(c, u)
	}
}

func (s *Server) handleInfo(c *gin.Context, u *Upload) {
	c.JSON(http.StatusOK, u.Info())
}

func (s *Server) handleDelete(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		abort(c, http.StatusNotFound, fmt.Errorf("upload not found: %s", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

// summarize applies the user, from and to query parameters to a copy of the
// upload's messages.
func (s *Server) summarize(c *gin.Context, u *Upload) (*analyze.Summary, bool) {
	var from, to time.Time
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &from}, {"to", &to}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			abort(c, http.StatusBadRequest, fmt.Errorf("invalid %s date %q (want YYYY-MM-DD)", p.name, v))
			return nil, false
		}
		*p.dst = t
	}
	user := c.DefaultQuery("user", parse.Overall)

	msgs := filter.ByDateRange(u.Messages, from, to)
	sum, err := s.opts.Analyzer.Summarize(msgs, user)
	if err != nil {
		abort(c, statusFor(err), err)
		return nil, false
	}
	return sum, true
}

func (s *Server) handleAnalysis(c *gin.Context, u *Upload) {
	sum, ok := s.summarize(c, u)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  sum,
		"charts":   chart.Names(sum),
		"insights": sum.Insights.Lines(),
	})
}

func (s *Server) handleChart(c *gin.Context, u *Upload) {
	name := c.Param("name")
	sum, ok := s.summarize(c, u)
	if !ok {
		return
	}
	known := false
	for _, n := range chart.Names(sum) {
		known = known || n == name
	}
	if !known {
		abort(c, http.StatusNotFound, fmt.Errorf("unknown chart %q", name))
		return
	}
	img, err := s.opts.Charts.Render(sum, name)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.Data(http.StatusOK, "image/png", img.PNG)
}

func (s *Server) handleReport(c *gin.Context, u *Upload) {
	sum, ok := s.summarize(c, u)
	if !ok {
		return
	}
	images, err := s.opts.Charts.All(sum)
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, sum, images, s.opts.Report); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", config.DefaultReportName))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
