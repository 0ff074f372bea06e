package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const DefaultAPIURL = "http://127.0.0.1:5001"

const apiPrefix = "/api/v0/files/"

// Client implements Store on top of the node's HTTP RPC API (the
// /api/v0/files/* family of calls).
type Client struct {
	rc  *resty.Client
	now func() time.Time
}

type ClientOpts struct {
	// APIURL is the base URL of the node RPC API, DefaultAPIURL when empty.
	APIURL string

	// Timeout bounds a single RPC call. Zero means no timeout.
	Timeout time.Duration
}

var _ Store = (*Client)(nil)

func NewClient(opts ClientOpts) *Client {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	rc := resty.New().SetBaseURL(apiURL)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{rc: rc, now: time.Now}
}

type lsResponse struct {
	Entries []struct {
		Name string `json:"Name"`
		Type int    `json:"Type"`
		Size int64  `json:"Size"`
		Hash string `json:"Hash"`
	} `json:"Entries"`
}

type statResponse struct {
	Hash           string `json:"Hash"`
	Size           int64  `json:"Size"`
	CumulativeSize int64  `json:"CumulativeSize"`
	Type           string `json:"Type"`
	Mtime          int64  `json:"Mtime,omitempty"`
}

func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	path = NormalizePath(path)
	body, err := c.call(ctx, "ls", url.Values{"arg": {path}, "long": {"true"}})
	if err != nil {
		return nil, err
	}

	var ls lsResponse
	if err := json.Unmarshal(body, &ls); err != nil {
		return nil, errors.Wrapf(err, "unable to decode files/ls response for %s", path)
	}

	now := c.now()
	entries := make([]Entry, 0, len(ls.Entries))
	for _, e := range ls.Entries {
		entries = append(entries, Entry{
			Path:       JoinPath(path, e.Name),
			CreatedAt:  now,
			ModifiedAt: now,
			IsDir:      e.Type == 1,
			Size:       e.Size,
		})
	}

	return entries, nil
}

func (c *Client) Stat(ctx context.Context, path string) (Entry, error) {
	path = NormalizePath(path)
	body, err := c.call(ctx, "stat", url.Values{"arg": {path}})
	if err != nil {
		return Entry{}, err
	}

	var stat statResponse
	if err := json.Unmarshal(body, &stat); err != nil {
		return Entry{}, errors.Wrapf(err, "unable to decode files/stat response for %s", path)
	}

	now := c.now()
	entry := Entry{
		Path:       path,
		CreatedAt:  now,
		ModifiedAt: now,
		IsDir:      stat.Type == "directory",
		Size:       stat.Size,
	}

	if stat.Mtime > 0 {
		entry.ModifiedAt = time.Unix(stat.Mtime, 0)
	}

	return entry, nil
}

func (c *Client) MakeDirectory(ctx context.Context, path string) (Entry, error) {
	path = NormalizePath(path)
	if _, err := c.call(ctx, "mkdir", url.Values{"arg": {path}, "parents": {"false"}}); err != nil {
		return Entry{}, err
	}

	return newDirEntry(path, c.now()), nil
}

func (c *Client) Remove(ctx context.Context, path string) error {
	_, err := c.call(ctx, "rm", url.Values{"arg": {NormalizePath(path)}, "recursive": {"true"}})
	return err
}

func (c *Client) Move(ctx context.Context, path, dest string) error {
	_, err := c.call(ctx, "mv", url.Values{"arg": {NormalizePath(path), NormalizePath(dest)}})
	return err
}

func (c *Client) Copy(ctx context.Context, path, dest string) error {
	_, err := c.call(ctx, "cp", url.Values{"arg": {NormalizePath(path), NormalizePath(dest)}})
	return err
}

func (c *Client) Read(ctx context.Context, path string, offset, count int64) ([]byte, error) {
	return c.call(ctx, "read", url.Values{
		"arg":    {NormalizePath(path)},
		"offset": {strconv.FormatInt(offset, 10)},
		"count":  {strconv.FormatInt(count, 10)},
	})
}

func (c *Client) Write(ctx context.Context, path string, offset int64, truncate bool, data []byte) error {
	params := url.Values{
		"arg":      {NormalizePath(path)},
		"offset":   {strconv.FormatInt(offset, 10)},
		"create":   {"true"},
		"truncate": {strconv.FormatBool(truncate)},
		"flush":    {"false"},
	}

	req := c.rc.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetFileReader("file", "data", bytes.NewReader(data))

	_, err := c.do(req, "write")
	return err
}

func (c *Client) Flush(ctx context.Context, path string) error {
	_, err := c.call(ctx, "flush", url.Values{"arg": {NormalizePath(path)}})
	return err
}

func (c *Client) call(ctx context.Context, cmd string, params url.Values) ([]byte, error) {
	req := c.rc.R().SetContext(ctx).SetQueryParamsFromValues(params)
	return c.do(req, cmd)
}

// do posts req to files/<cmd>. The RPC API only accepts POST.
func (c *Client) do(req *resty.Request, cmd string) ([]byte, error) {
	resp, err := req.Post(apiPrefix + cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "files/%s failed", cmd)
	}

	if resp.IsError() {
		return nil, errors.WithMessagef(toErrorFromResponse(resp), "files/%s", cmd)
	}

	return resp.Body(), nil
}
