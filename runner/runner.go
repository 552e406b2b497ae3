// Package runner drives probe attempts for a batch of targets: one
// scheduling goroutine per target, one goroutine per attempt, joined
// before the per-target and global summaries are printed.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/silexio/zping/common"
	"github.com/silexio/zping/config"
	"github.com/silexio/zping/probe"
	"github.com/silexio/zping/prober"
)

var logger = common.GetLogger()

// Prober is the probe engine the runner schedules attempts onto.
type Prober interface {
	Probe(ctx context.Context, t probe.TargetParams) (*probe.Output, error)
}

// Target is one host to probe: Count attempts, one per Interval tick.
type Target struct {
	Addr     netip.Addr
	Count    int
	Interval time.Duration
}

func (t Target) String() string {
	return fmt.Sprintf("%s count=%d interval=%v", t.Addr, t.Count, t.Interval)
}

// FromConfig converts a validated config row.
func FromConfig(ct config.Target) Target {
	return Target{
		Addr:     netip.MustParseAddr(ct.Addr),
		Count:    ct.Count,
		Interval: time.Duration(ct.Interval) * time.Millisecond,
	}
}

// Summary totals one Run.
type Summary struct {
	Targets     int
	Skipped     int
	Transmitted uint64
	Received    uint64
}

// Runner fans probe attempts out over a Prober, optionally throttled by a
// global probes-per-second limit.
type Runner struct {
	prober  Prober
	limiter *rate.Limiter
	out     io.Writer
}

// New builds a Runner. probesPerSec 0 disables throttling.
func New(p Prober, probesPerSec float64) *Runner {
	r := &Runner{prober: p, out: os.Stdout}
	if probesPerSec > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(probesPerSec), 1)
	}
	return r
}

// SetOutput redirects the reply and summary lines, which default to
// stdout.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

// Run probes every target until its attempts are exhausted or ctx is
// cancelled, then prints the global summary. Targets sharing an address
// are collapsed to the first occurrence; a duplicate address would break
// correlation-key uniqueness across overlapping attempts.
func (r *Runner) Run(ctx context.Context, targets []Target) *Summary {
	seen := mapset.NewSet()
	s := &Summary{}
	var wg sync.WaitGroup
	for _, t := range targets {
		if !seen.Add(t.Addr.String()) {
			logger.Warn("Duplicate target skipped", zap.Stringer("addr", t.Addr))
			s.Skipped++
			continue
		}
		s.Targets++
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			r.runTarget(ctx, t, s)
		}(t)
	}
	wg.Wait()

	fmt.Fprintf(r.out, "total: %s probes transmitted, %s replies received across %s targets\n",
		humanize.Comma(int64(atomic.LoadUint64(&s.Transmitted))),
		humanize.Comma(int64(atomic.LoadUint64(&s.Received))),
		humanize.Comma(int64(s.Targets)))
	return s
}

// runTarget schedules one target's attempts: the first immediately, the
// rest one per interval tick. Attempts overlap when replies are slower
// than the interval; each runs in its own goroutine and all are joined
// before the target's summary line.
func (r *Runner) runTarget(ctx context.Context, t Target, s *Summary) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	var sent, received uint64
loop:
	for seq := 0; seq < t.Count; seq++ {
		if seq > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				break loop
			}
		}
		wg.Add(1)
		go func(seq uint16) {
			defer wg.Done()
			r.attempt(ctx, t, seq, &sent, &received)
		}(uint16(seq))
	}
	wg.Wait()

	tx := atomic.LoadUint64(&sent)
	rx := atomic.LoadUint64(&received)
	var loss float64
	if tx > 0 {
		loss = 100 * float64(tx-rx) / float64(tx)
	}
	fmt.Fprintf(r.out, "--- %s ---\n%d packets transmitted, %d packets received, %.0f%% packet loss\n",
		t.Addr, tx, rx, loss)
	atomic.AddUint64(&s.Transmitted, tx)
	atomic.AddUint64(&s.Received, rx)
}

func (r *Runner) attempt(ctx context.Context, t Target, seq uint16, sent, received *uint64) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
	}
	tp := probe.TargetParams{Addr: t.Addr, Seq: seq}
	start := time.Now()
	atomic.AddUint64(sent, 1)
	out, err := r.prober.Probe(ctx, tp)
	switch {
	case err == nil:
		atomic.AddUint64(received, 1)
		line := fmt.Sprintf("reply from %s: seq=%d time=%v", out.Addr, out.Seq, time.Since(start).Round(time.Microsecond))
		if country := common.Country(out.Addr); country != "" {
			line += " country=" + country
		}
		fmt.Fprintln(r.out, line)
	case prober.IsTimeout(err):
		logger.Debug("No reply", zap.Stringer("target", tp))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		logger.Debug("Attempt cancelled", zap.Stringer("target", tp))
	default:
		logger.Warn("Probe failed", zap.Stringer("target", tp), zap.Error(err))
	}
}
