//go:build !mutflex_noasync

package stress

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Aandreba/mutflex/cmd/util"
	"github.com/Aandreba/mutflex/lib/lockmgr"
	"github.com/Aandreba/mutflex/lib/mutex"
	"github.com/Aandreba/mutflex/lib/task"
	libutil "github.com/Aandreba/mutflex/lib/util"
	"github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/sourcegraph/conc"
)

// --------------------------------------------------------------------------
// Targets
// --------------------------------------------------------------------------

// release increments the protected counter and gives the lock back.
type release func()

// target is a lock protecting one counter.
type target interface {
	lockAsync() task.Future[release]
	lock() release
	final() int
	writeMetrics(w io.Writer)
}

func newTarget(cfg *util.StressConfig) target {
	if cfg.Mode == util.ModeLockMgr {
		return &lockMgrTarget{lm: lockmgr.NewAsyncLockManager()}
	}
	return &mutexTarget{m: mutex.WithCapacity(0, cfg.QueueCapacity)}
}

type mutexTarget struct {
	m *mutex.Mutex[int]
}

func guardRelease(g *mutex.Guard[int]) release {
	return func() {
		*g.Value()++
		g.Unlock()
	}
}

func (t *mutexTarget) lockAsync() task.Future[release] {
	return task.Map[*mutex.Guard[int]](t.m.LockAsync(), guardRelease)
}

func (t *mutexTarget) lock() release { return guardRelease(t.m.Lock()) }

func (t *mutexTarget) final() int { return t.m.IntoInner() }

func (t *mutexTarget) writeMetrics(io.Writer) {}

const stressKey = "stress"

type lockMgrTarget struct {
	lm      lockmgr.IAsyncLockManager
	counter int // guarded by the stressKey lock
}

// release turns an acquisition into a release func, nil if it failed.
func (t *lockMgrTarget) release(a lockmgr.Acquired) release {
	if a.Err != nil {
		plog.Errorf("error acquiring %s: %v", stressKey, a.Err)
		return nil
	}
	return func() {
		t.counter++
		if _, err := t.lm.ReleaseLock(stressKey, a.OwnerID); err != nil {
			plog.Errorf("error releasing %s: %v", stressKey, err)
		}
	}
}

func (t *lockMgrTarget) lockAsync() task.Future[release] {
	return task.Map(t.lm.AcquireLockAsync(stressKey), t.release)
}

func (t *lockMgrTarget) lock() release {
	ownerID, err := t.lm.AcquireLock(stressKey)
	return t.release(lockmgr.Acquired{OwnerID: ownerID, Err: err})
}

func (t *lockMgrTarget) final() int { return t.counter }

func (t *lockMgrTarget) writeMetrics(w io.Writer) { t.lm.WriteMetrics(w) }

// --------------------------------------------------------------------------
// Run
// --------------------------------------------------------------------------

// randHold picks a hold time in [0, limit].
func randHold(r *rand.Rand, limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(r.Int64N(int64(limit) + 1))
}

// Run executes one stress run. Every task acquires the lock asynchronously,
// sleeps its hold time on the executor while holding the lock and increments
// the counter on release. Blocking goroutines compete until the last task
// has finished.
func Run(cfg *util.StressConfig) (*Report, error) {
	set := metrics.NewSet()
	waitHist := set.NewHistogram("mutflex_stress_task_wait_seconds")
	taskAcq := set.NewCounter(`mutflex_stress_acquisitions_total{caller="task"}`)
	blockAcq := set.NewCounter(`mutflex_stress_acquisitions_total{caller="blocking"}`)
	waits := gometrics.NewTimer()

	tgt := newTarget(cfg)
	exec := task.NewExecutor(cfg.Workers)
	defer exec.Close()

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1))
	start := time.Now()

	var stop atomic.Bool
	counts := make([]float64, cfg.Blocking)
	var blocking conc.WaitGroup
	for i := 0; i < cfg.Blocking; i++ {
		seed := rng.Uint64()
		blocking.Go(func() {
			r := rand.New(rand.NewPCG(seed, uint64(i)))
			n := 0
			for !stop.Load() {
				if rel := tgt.lock(); rel != nil {
					rel()
					n++
					blockAcq.Inc()
				}
				// think time outside the lock
				time.Sleep(randHold(r, cfg.MaxHold))
			}
			counts[i] = float64(n)
		})
	}
	stopBlocking := func() {
		stop.Store(true)
		blocking.Wait()
	}

	handles := make([]*task.JoinHandle[bool], 0, cfg.Tasks)
	for i := 0; i < cfg.Tasks; i++ {
		hold := randHold(rng, cfg.MaxHold)
		spawned := time.Now()

		f := task.Then(tgt.lockAsync(), func(rel release) task.Future[bool] {
			waited := time.Since(spawned)
			waits.Update(waited)
			waitHist.Update(waited.Seconds())
			if rel == nil {
				return task.Ready(false)
			}
			return task.Map(exec.Sleep(hold), func(struct{}) bool {
				rel()
				taskAcq.Inc()
				return true
			})
		})

		h, err := task.Spawn(exec, f)
		if err != nil {
			stopBlocking()
			return nil, fmt.Errorf("failed to spawn task %d: %v", i, err)
		}
		handles = append(handles, h)
	}
	plog.Infof("spawned %d tasks", len(handles))

	expected := 0
	for _, h := range handles {
		if h.Wait() {
			expected++
		}
	}
	stopBlocking()
	elapsed := time.Since(start)

	for _, c := range counts {
		expected += int(c)
	}

	report := &Report{
		Final:    tgt.final(),
		Expected: expected,
		Elapsed:  elapsed,
		metrics: func(w io.Writer) {
			set.WritePrometheus(w)
			tgt.writeMetrics(w)
		},
	}

	if waits.Count() > 0 {
		ps := waits.Percentiles([]float64{0.5, 0.99})
		report.WaitP50 = time.Duration(ps[0])
		report.WaitP99 = time.Duration(ps[1])
		report.WaitMax = time.Duration(waits.Max())
	}
	if len(counts) > 0 {
		report.Blocking = libutil.NewDistributionStats(counts)
	}

	return report, nil
}
