package batch

// order-preserving batch correction. every image is independent so
// work is spread over a bounded worker pool; results land in slots
// addressed by input index, never by completion time.

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/xerrors"

	"exiffix/lib/exiftag"
	"exiffix/lib/logx"
	"exiffix/lib/normalizer"
)

type Item struct {
	Name string
	Data []byte
}

// Result is the per-item outcome. Exactly one of these exists per
// input item, at the same index. Orient is the orientation detected
// in the input; after successful correction the output bytes are
// canonical regardless of it. Warned means the metadata strategy
// could not rewrite the tag and Data carries the input unchanged.
type Result struct {
	Item
	Orient int
	Warned bool
	Err    error
}

var ErrUnsupportedInput = errors.New("batch: no route for input type")

// Route decides by extension whether entries get normalized or passed
// through untouched.
type Route struct {
	Ext  glob.Glob
	Pass bool
}

// DefaultRoutes: jpeg family gets corrected, png has no Exif
// orientation and passes through.
func DefaultRoutes() []Route {
	return []Route{
		{Ext: glob.MustCompile("{jpg,jpeg}")},
		{Ext: glob.MustCompile("png"), Pass: true},
	}
}

type Config struct {
	Workers  int // <=0 means GOMAXPROCS
	Routes   []Route
	Progress func(done, total int) // advisory, called as items finish
}

type Corrector struct {
	cfg  Config
	norm normalizer.Normalizer
	log  logx.LogToX
}

func NewCorrector(
	cfg Config, norm normalizer.Normalizer, lx logx.LoggerX) *Corrector {

	if cfg.Routes == nil {
		cfg.Routes = DefaultRoutes()
	}
	return &Corrector{
		cfg:  cfg,
		norm: norm,
		log:  logx.NewLogToX(lx, "batch"),
	}
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}

func (c *Corrector) route(ext string) *Route {
	for i := range c.cfg.Routes {
		if c.cfg.Routes[i].Ext.Match(ext) {
			return &c.cfg.Routes[i]
		}
	}
	return nil
}

// Correct processes items and returns results aligned with input
// order. Per-item failures never abort the batch. Cancelling ctx
// stops handing out work; items not yet started come back with
// ctx.Err() set.
func (c *Corrector) Correct(ctx context.Context, items []Item) []Result {
	total := len(items)
	res := make([]Result, total)

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		progressMu sync.Mutex
		completed  int
	)
	finish := func() {
		if c.cfg.Progress == nil {
			return
		}
		// callback runs under the lock so counts arrive in order
		progressMu.Lock()
		completed++
		c.cfg.Progress(completed, total)
		progressMu.Unlock()
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				res[i] = c.correctOne(ctx, items[i])
				finish()
			}
		}()
	}

	next := 0
feed:
	for ; next < total; next++ {
		select {
		case <-ctx.Done():
			break feed
		case idx <- next:
		}
	}
	close(idx)
	wg.Wait()

	// items never handed out record the cancellation cause
	for ; next < total; next++ {
		res[next] = Result{Item: items[next], Orient: 1, Err: ctx.Err()}
	}
	return res
}

func (c *Corrector) correctOne(ctx context.Context, it Item) (r Result) {
	r.Item = it
	r.Orient = 1

	if err := ctx.Err(); err != nil {
		r.Err = err
		return
	}

	rt := c.route(extOf(it.Name))
	if rt == nil {
		r.Err = xerrors.Errorf("batch: %q: %w", it.Name, ErrUnsupportedInput)
		return
	}
	if rt.Pass {
		return
	}

	code := exiftag.Orient(it.Data)
	r.Orient = code
	if code == 1 {
		// already canonical; passthrough is bit-identical
		return
	}

	out, err := c.norm.Normalize(it.Data, code)
	if err != nil {
		if xerrors.Is(err, normalizer.ErrTagNotFound) {
			c.log.LogPrintf(logx.WARN,
				"%s: orientation %d but tag not relocatable, "+
					"bytes left unchanged", it.Name, code)
			r.Warned = true
			r.Data = out
			return
		}
		r.Err = xerrors.Errorf("batch: %q: %w", it.Name, err)
		return
	}
	r.Data = out
	return
}
