// Package requestsmod implements the requests stdlib module's get/post,
// gated by the run's NetworkPolicy (spec.md §4.3 — a nil policy denies
// every request unconditionally), backed by
// github.com/hashicorp/go-retryablehttp per SPEC_FULL.md §11:
// retried only for the idempotent GET/HEAD methods it exposes, never for
// POST, so a guest program's side-effecting call is never silently resent.
package requestsmod

import (
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func newNonRetryingClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	return c
}

func newRetryingClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil
	return c
}

func doRequest(ctx *pycontext.Context, method, url string, body string, headers map[string]string) (pyvalue.Value, error) {
	// The network mechanism is the NetworkPolicy itself (spec.md §4.3/§8):
	// a nil ctx.Network denies every request unconditionally, regardless
	// of capability state. There is no separate "network" capability
	// named anywhere in spec — only s3/sql-style examples — so Admit is
	// the sole gate here.
	if err := ctx.Network.Admit(method, url); err != nil {
		return nil, err
	}
	var client *retryablehttp.Client
	if method == http.MethodGet || method == http.MethodHead {
		client = newRetryingClient()
	} else {
		client = newNonRetryingClient()
	}
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := retryablehttp.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, pyerr.New(pyerr.NetworkError, "invalid request: %s", err.Error())
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, pyerr.New(pyerr.NetworkError, "request failed: %s", err.Error())
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pyerr.New(pyerr.NetworkError, "failed reading response body: %s", err.Error())
	}

	out := pyvalue.NewDict()
	out.Set(pyvalue.Str("status_code"), pyvalue.Int(resp.StatusCode))
	out.Set(pyvalue.Str("text"), pyvalue.Str(string(data)))
	headerDict := pyvalue.NewDict()
	for k := range resp.Header {
		headerDict.Set(pyvalue.Str(k), pyvalue.Str(resp.Header.Get(k)))
	}
	out.Set(pyvalue.Str("headers"), headerDict)
	out.Set(pyvalue.Str("ok"), pyvalue.Bool(resp.StatusCode >= 200 && resp.StatusCode < 300))
	return out, nil
}

func stringArg(args []pyvalue.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	s, ok := args[i].(pyvalue.Str)
	return string(s), ok
}

func headersFromKwargs(kwargs map[string]pyvalue.Value) map[string]string {
	out := map[string]string{}
	hv, ok := kwargs["headers"]
	if !ok {
		return out
	}
	d, ok := hv.(*pyvalue.Dict)
	if !ok {
		return out
	}
	for _, kv := range d.Items() {
		k, _ := kv.Items[0].(pyvalue.Str)
		v, _ := kv.Items[1].(pyvalue.Str)
		out[string(k)] = string(v)
	}
	return out
}

// Module builds the requests namespace for one run; get/post close over
// ctx since every call must re-check the run's network policy.
func Module(ctx *pycontext.Context) pycontext.ModuleProvider {
	get := &pyvalue.BuiltinKWFunc{Name: "get", Fn: func(args []pyvalue.Value, kwargs map[string]pyvalue.Value) (pyvalue.Value, error) {
		url, ok := stringArg(args, 0)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "get() requires a url")
		}
		return doRequest(ctx, http.MethodGet, url, "", headersFromKwargs(kwargs))
	}}
	post := &pyvalue.BuiltinKWFunc{Name: "post", Fn: func(args []pyvalue.Value, kwargs map[string]pyvalue.Value) (pyvalue.Value, error) {
		url, ok := stringArg(args, 0)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "post() requires a url")
		}
		body, _ := stringArg(args, 1)
		if bv, ok := kwargs["data"]; ok {
			if s, ok := bv.(pyvalue.Str); ok {
				body = string(s)
			}
		}
		return doRequest(ctx, http.MethodPost, url, body, headersFromKwargs(kwargs))
	}}
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"get":  get,
		"post": post,
	})
}
