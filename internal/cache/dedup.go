package cache

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Deduper shares one in-flight call between identical concurrent requests.
// Call sites opt in explicitly; nothing is deduplicated implicitly.
type Deduper struct {
	group singleflight.Group
}

func NewDeduper() *Deduper {
	return &Deduper{}
}

// RequestKey identifies a request by method, URL and JSON body.
func RequestKey(method, url string, body any) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(':')
	b.WriteString(url)
	b.WriteByte(':')
	if body != nil {
		if raw, err := json.Marshal(body); err == nil {
			b.Write(raw)
		}
	}
	return b.String()
}

// Do runs fn once per key among concurrent callers. shared reports whether
// the result was handed to more than one caller. A caller whose ctx ends
// stops waiting; the call itself keeps running for the others.
func (d *Deduper) Do(ctx context.Context, key string, fn func() (any, error)) (v any, shared bool, err error) {
	ch := d.group.DoChan(key, fn)
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Forget drops the in-flight entry so the next caller starts a fresh call.
func (d *Deduper) Forget(key string) {
	d.group.Forget(key)
}
