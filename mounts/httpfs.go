package mounts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thedevsaddam/gojsonq/v2"

	"github.com/jackfish212/scour/types"
)

var (
	_ types.Provider       = (*HTTPFS)(nil)
	_ types.NativeSearcher = (*HTTPFS)(nil)
)

// HTTPFS exposes a remote filesystem served over HTTP. The remote side
// answers three endpoints, all JSON:
//
//	GET {base}/stat?path=P            one entry
//	GET {base}/list?path=P            {"entries": [entry, ...]}
//	GET {base}/search?path=P&pattern=G&flags=F&capacity=N
//	                                  {"count": n, "records": [{"path": ..., "meta": ...}]}
//
// Because the remote end can run the whole pattern scan itself, HTTPFS
// is a native searcher: the walker hands it the subtree and re-emits
// the records the server already framed.
type HTTPFS struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

type HTTPFSOption func(*HTTPFS)

// WithHeader attaches a header to every request, e.g. an Authorization
// token.
func WithHeader(key, value string) HTTPFSOption {
	return func(h *HTTPFS) { h.headers[key] = value }
}

func WithHTTPClient(c *http.Client) HTTPFSOption {
	return func(h *HTTPFS) { h.client = c }
}

func NewHTTPFS(baseURL string, opts ...HTTPFSOption) *HTTPFS {
	h := &HTTPFS{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPFS) get(ctx context.Context, endpoint string, query url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNoDevice, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", types.ErrNotFound, query.Get("path"))
	case http.StatusForbidden, http.StatusUnauthorized:
		return "", fmt.Errorf("%w: %s", types.ErrNotReadable, query.Get("path"))
	default:
		return "", fmt.Errorf("remote %s: HTTP %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

func entryFromJSON(m map[string]any) types.Entry {
	e := types.Entry{}
	if v, ok := m["name"].(string); ok {
		e.Name = v
	}
	if v, ok := m["path"].(string); ok {
		e.Path = v
	}
	if v, ok := m["dir"].(bool); ok {
		e.IsDir = v
	}
	if v, ok := m["perm"].(float64); ok {
		e.Perm = types.Perm(int(v))
	}
	if v, ok := m["size"].(float64); ok {
		e.Size = int64(v)
	}
	if v, ok := m["modified"].(float64); ok {
		e.Modified = time.Unix(int64(v), 0)
	}
	return e
}

func (h *HTTPFS) Stat(ctx context.Context, path string) (*types.Entry, error) {
	body, err := h.get(ctx, "/stat", url.Values{"path": {normPath(path)}})
	if err != nil {
		return nil, err
	}
	m, ok := gojsonq.New().FromString(body).Get().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("remote stat: malformed response")
	}
	entry := entryFromJSON(m)
	if entry.Name == "" {
		entry.Name = baseName(normPath(path))
	}
	return &entry, nil
}

func (h *HTTPFS) List(ctx context.Context, path string, _ types.ListOpts) ([]types.Entry, error) {
	body, err := h.get(ctx, "/list", url.Values{"path": {normPath(path)}})
	if err != nil {
		return nil, err
	}
	raw, ok := gojsonq.New().FromString(body).Find("entries").([]any)
	if !ok {
		return nil, fmt.Errorf("remote list: malformed response")
	}
	entries := make([]types.Entry, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, entryFromJSON(m))
	}
	return entries, nil
}

// NativeSearch forwards the scan to the server and re-frames its
// records locally. The advertised capacity keeps the server from
// returning more than the caller's buffer can hold, but the local
// framing check still decides.
func (h *HTTPFS) NativeSearch(ctx context.Context, mountPath, relPath, pattern string, flags types.Flags, out *types.ResultBuffer) (int, error) {
	q := url.Values{
		"path":     {normPath(relPath)},
		"pattern":  {pattern},
		"flags":    {strconv.Itoa(int(flags))},
		"capacity": {strconv.Itoa(out.Remaining())},
	}
	body, err := h.get(ctx, "/search", q)
	if err != nil {
		return 0, err
	}

	raw, ok := gojsonq.New().FromString(body).Find("records").([]any)
	if !ok {
		return 0, fmt.Errorf("remote search: malformed response")
	}

	mp := mountPath
	if mp == "/" {
		mp = ""
	}

	results := 0
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p, _ := m["path"].(string)
		meta, _ := m["meta"].(string)
		if flags.Has(types.IncludeRoot) {
			p = mp + "/" + strings.TrimPrefix(p, "/")
		}
		if err := out.EmitEncoded(p, meta); err != nil {
			return results, err
		}
		results++
		if flags.Has(types.StopAtFirst) {
			break
		}
	}
	return results, nil
}

func (h *HTTPFS) MountInfo() (string, string) { return "httpfs", h.baseURL }
