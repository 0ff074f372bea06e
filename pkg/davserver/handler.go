package davserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/debox-network/ipfs-webdav/pkg/metrics"
	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/hashicorp/go-uuid"
	"golang.org/x/net/webdav"
)

type requestIDKey struct{}

// RequestID returns the id the handler gave to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type HandlerOpts struct {
	// Prefix is stripped from request paths, as in webdav.Handler.
	Prefix string

	// LockSystem defaults to an in-memory lock system.
	LockSystem webdav.LockSystem

	Logger log.Interface
}

// Handler serves WebDAV on top of an mfsdav.FS. Everything except a plain
// recursive COPY is handled by x/net/webdav; that COPY is sent to the peer
// as a single copy instead of being replayed file by file.
type Handler struct {
	fs     *mfsdav.FS
	dav    *webdav.Handler
	ls     webdav.LockSystem
	prefix string
	log    log.Interface
}

func NewHandler(fs *mfsdav.FS, opts HandlerOpts) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Log
	}

	ls := opts.LockSystem
	if ls == nil {
		ls = webdav.NewMemLS()
	}

	h := &Handler{fs: fs, ls: ls, prefix: opts.Prefix, log: logger}
	h.dav = &webdav.Handler{
		Prefix:     opts.Prefix,
		FileSystem: NewFileSystem(fs, logger),
		LockSystem: ls,
		Logger:     h.logError,
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, err := uuid.GenerateUUID()
	if err != nil {
		h.log.Warnf("unable to generate request id: %s", err)
	}

	r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
	w.Header().Set("X-Request-Id", id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	if r.Method == "COPY" && h.copiesNatively(r) {
		h.handleCopy(rec, r)
	} else {
		h.dav.ServeHTTP(rec, r)
	}

	metrics.ObserveRequest(r.Method, rec.status, start)
	h.log.WithFields(log.Fields{
		"request":  id,
		"method":   r.Method,
		"path":     r.URL.Path,
		"status":   rec.status,
		"duration": time.Since(start).String(),
	}).Info("dav")
}

func (h *Handler) logError(r *http.Request, err error) {
	if err == nil {
		return
	}

	h.log.WithFields(log.Fields{
		"request": RequestID(r.Context()),
		"method":  r.Method,
		"path":    r.URL.Path,
	}).WithError(err).Debug("dav error")
}

// copiesNatively reports whether a COPY can skip lock tokens and depth
// handling. Anything else goes through webdav.Handler.
func (h *Handler) copiesNatively(r *http.Request) bool {
	if r.Header.Get("If") != "" {
		return false
	}

	depth := r.Header.Get("Depth")
	return depth == "" || strings.EqualFold(depth, "infinity")
}

func (h *Handler) handleCopy(w http.ResponseWriter, r *http.Request) {
	status, err := h.copy(r)
	w.WriteHeader(status)
	if status != http.StatusNoContent {
		_, _ = w.Write([]byte(webdav.StatusText(status)))
	}

	h.logError(r, err)
}

func (h *Handler) copy(r *http.Request) (int, error) {
	hdr := r.Header.Get("Destination")
	if hdr == "" {
		return http.StatusBadRequest, errors.New("missing destination")
	}

	u, err := url.Parse(hdr)
	if err != nil {
		return http.StatusBadRequest, err
	}

	if u.Host != "" && u.Host != r.Host {
		return http.StatusBadGateway, errors.New("destination is on another host")
	}

	src, ok := h.stripPrefix(r.URL.Path)
	if !ok {
		return http.StatusNotFound, errors.New("prefix mismatch")
	}

	dst, ok := h.stripPrefix(u.Path)
	if !ok {
		return http.StatusNotFound, errors.New("prefix mismatch")
	}

	src, dst = peer.NormalizePath(src), peer.NormalizePath(dst)
	switch {
	case dst == src:
		return http.StatusForbidden, errors.New("destination equals source")
	case peer.IsUnder(dst, src):
		return http.StatusForbidden, errors.New("destination is inside source")
	}

	// Only the destination is locked, matching webdav.Handler.
	now := time.Now()
	token, err := h.ls.Create(now, webdav.LockDetails{Root: dst, Duration: -1, ZeroDepth: true})
	if err != nil {
		if err == webdav.ErrLocked {
			return webdav.StatusLocked, err
		}
		return http.StatusInternalServerError, err
	}
	defer func() { _ = h.ls.Unlock(now, token) }()

	ctx := r.Context()
	if _, err := h.fs.Metadata(ctx, src); err != nil {
		if errors.Is(err, mfsdav.ErrNotFound) {
			return http.StatusNotFound, err
		}
		return http.StatusInternalServerError, err
	}

	parent, err := h.fs.Metadata(ctx, peer.ParentPath(dst))
	if err != nil || !parent.IsDir() {
		return http.StatusConflict, errors.New("destination parent is not a collection")
	}

	created := true
	if existing, err := h.fs.Metadata(ctx, dst); err == nil {
		if r.Header.Get("Overwrite") == "F" {
			return http.StatusPreconditionFailed, errors.New("destination exists")
		}

		if existing.IsDir() {
			err = h.fs.RemoveDirectory(ctx, dst)
		} else {
			err = h.fs.RemoveFile(ctx, dst)
		}
		if err != nil {
			return http.StatusForbidden, err
		}
		created = false
	}

	if err := h.fs.Copy(ctx, src, dst); err != nil {
		return http.StatusForbidden, err
	}

	if created {
		return http.StatusCreated, nil
	}

	return http.StatusNoContent, nil
}

func (h *Handler) stripPrefix(p string) (string, bool) {
	if h.prefix == "" {
		return p, true
	}

	if rest := strings.TrimPrefix(p, h.prefix); len(rest) < len(p) {
		return rest, true
	}

	return p, false
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(p)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
