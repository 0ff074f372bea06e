package peer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	path   string
	method string
	args   []string
	query  map[string][]string
	body   []byte
}

type rpcRecorder struct {
	mu    sync.Mutex
	calls []rpcCall
}

func (r *rpcRecorder) record(call rpcCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *rpcRecorder) all() []rpcCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rpcCall(nil), r.calls...)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, call rpcCall)) (*Client, *rpcRecorder) {
	rec := &rpcRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := rpcCall{path: r.URL.Path, method: r.Method, args: r.URL.Query()["arg"], query: r.URL.Query()}
		if r.URL.Path == apiPrefix+"write" {
			f, _, err := r.FormFile("file")
			require.NoErrorf(t, err, "write request had no file part: %s", err)
			call.body, _ = io.ReadAll(f)
		}
		rec.record(call)
		handler(w, call)
	}))
	t.Cleanup(srv.Close)

	return NewClient(ClientOpts{APIURL: srv.URL, Timeout: 5 * time.Second}), rec
}

func TestClientListDecodesLongEntries(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"Entries":[{"Name":"f","Type":0,"Size":10,"Hash":"Qm1"},{"Name":"sub","Type":1,"Size":0,"Hash":"Qm2"}]}`)
	})

	entries, err := c.List(context.Background(), "/dir/")
	require.NoErrorf(t, err, "List failed: %s", err)
	require.Len(t, entries, 2)

	require.Equal(t, "/dir/f", entries[0].Path)
	require.Equal(t, int64(10), entries[0].Size)
	require.False(t, entries[0].IsDir)
	require.Equal(t, "/dir/sub", entries[1].Path)
	require.True(t, entries[1].IsDir)

	calls := rec.all()
	require.Len(t, calls, 1)
	call := calls[0]
	require.Equal(t, http.MethodPost, call.method)
	require.Equal(t, apiPrefix+"ls", call.path)
	require.Equal(t, []string{"/dir"}, call.args, "path should be normalized before it is sent")
	require.Equal(t, []string{"true"}, call.query["long"])
}

func TestClientListHandlesEmptyDirectory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		_, _ = io.WriteString(w, `{"Entries":null}`)
	})

	entries, err := c.List(context.Background(), "/")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestClientStat(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		_, _ = io.WriteString(w, `{"Hash":"Qm","Size":42,"CumulativeSize":100,"Type":"file","Mtime":1700000000}`)
	})

	entry, err := c.Stat(context.Background(), "/f")
	require.NoError(t, err)
	require.Equal(t, "/f", entry.Path)
	require.Equal(t, int64(42), entry.Size)
	require.False(t, entry.IsDir)
	require.Equal(t, time.Unix(1700000000, 0), entry.ModifiedAt)
}

func TestClientMapsNotFoundErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"Message":"file does not exist","Code":0,"Type":"error"}`)
	})

	_, err := c.Stat(context.Background(), "/missing")
	require.Error(t, err)
	require.Truef(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %s", err)
	require.True(t, errors.Is(err, ErrRPC) || errors.Is(err, ErrNotFound))

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusInternalServerError, rpcErr.StatusCode)
}

func TestClientNonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "bad gateway")
	})

	err := c.Flush(context.Background(), "/f")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad gateway")
}

func TestClientMoveCopyAndRemoveArguments(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {})
	ctx := context.Background()

	require.NoError(t, c.Move(ctx, "/a/", "/b"))
	require.NoError(t, c.Copy(ctx, "/a", "/c/"))
	require.NoError(t, c.Remove(ctx, "/a"))

	calls := rec.all()
	require.Len(t, calls, 3)
	require.Equal(t, apiPrefix+"mv", calls[0].path)
	require.Equal(t, []string{"/a", "/b"}, calls[0].args)
	require.Equal(t, apiPrefix+"cp", calls[1].path)
	require.Equal(t, []string{"/a", "/c"}, calls[1].args)
	require.Equal(t, apiPrefix+"rm", calls[2].path)
	require.Equal(t, []string{"true"}, calls[2].query["recursive"])
}

func TestClientReadAndWrite(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, call rpcCall) {
		if call.path == apiPrefix+"read" {
			_, _ = io.WriteString(w, "abc")
		}
	})
	ctx := context.Background()

	data, err := c.Read(ctx, "/f", 5, 3)
	require.NoError(t, err)
	require.Equal(t, "abc", string(data))

	err = c.Write(ctx, "/f", 7, true, []byte("payload"))
	require.NoError(t, err)

	calls := rec.all()
	require.Len(t, calls, 2)
	read := calls[0]
	require.Equal(t, []string{"5"}, read.query["offset"])
	require.Equal(t, []string{"3"}, read.query["count"])

	write := calls[1]
	require.Equal(t, apiPrefix+"write", write.path)
	require.Equal(t, []string{"7"}, write.query["offset"])
	require.Equal(t, []string{"true"}, write.query["truncate"])
	require.Equal(t, []string{"true"}, write.query["create"])
	require.Equal(t, []string{"false"}, write.query["flush"])
	require.Equal(t, "payload", string(write.body))
}
