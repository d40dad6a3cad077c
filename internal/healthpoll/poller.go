package healthpoll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taoyao-code/mcp-status/internal/metrics"
)

var ErrAlreadyStarted = errors.New("healthpoll: poller already started")

// UpdateFunc 接收每个完成的快照
type UpdateFunc func(Status)

// Ticker 定时器抽象，测试可替换
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker 默认 Ticker 实现
func NewTimeTicker(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} }

// Options 轮询器依赖
type Options struct {
	Prober  Prober
	Timeout time.Duration // 单次探测超时，上限为 interval 的 90%，0 表示取上限
	Logger  *zap.Logger
	Metrics *metrics.PollerMetrics
	// NewTicker 为 nil 时使用 time.Ticker
	NewTicker func(time.Duration) Ticker
	// FailureLogInterval 连续失败时 warn 日志的最小间隔，默认 1 分钟
	FailureLogInterval time.Duration
}

// Poller 周期性探测一个健康端点并保存最近一次快照。
//
// 状态：idle -> polling -> idle。Start 后立即探测一次，之后每个 interval 探测一次。
// 上一次探测未完成时到达的 tick 直接跳过（不排队）。
// 回调在独立的派发 goroutine 上执行，邮箱容量为 1，只保留最新快照，慢回调不会阻塞轮询。
// Stop 返回后不会再开始任何回调；不要在回调里调用 Stop。
type Poller struct {
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	gen    uint64
	active *run
	latest Status
}

// run 一次 Start 到 Stop 之间的运行期状态
type run struct {
	gen      uint64
	endpoint string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	mailbox  chan Status
	inflight atomic.Bool
	failLog  *rate.Sometimes
	healthy  bool
	polled   bool
}

// New 创建轮询器
func New(opts Options) *Poller {
	if opts.Prober == nil {
		opts.Prober = NewHTTPProber(nil, "")
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.FailureLogInterval <= 0 {
		opts.FailureLogInterval = time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{opts: opts, log: log}
}

// Start 开始轮询 endpoint
func (p *Poller) Start(ctx context.Context, endpoint string, interval time.Duration, onUpdate UpdateFunc) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if err := ValidateEndpoint(endpoint); err != nil {
		return err
	}

	p.mu.Lock()
	if p.active != nil {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.gen++
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		gen:      p.gen,
		endpoint: endpoint,
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
		mailbox:  make(chan Status, 1),
		failLog:  &rate.Sometimes{First: 1, Interval: p.opts.FailureLogInterval},
	}
	p.active = r
	p.latest = Status{}
	p.mu.Unlock()

	p.log.Info("health poller started",
		zap.Uint64("run", r.gen),
		zap.String("endpoint", endpoint),
		zap.Duration("interval", interval))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.loop(runCtx, r)
	}()
	go func() {
		defer wg.Done()
		p.dispatch(runCtx, r, onUpdate)
	}()
	go func() {
		wg.Wait()
		// 父 context 取消时自行回到 idle
		p.mu.Lock()
		if p.active == r {
			p.active = nil
			p.latest = Status{}
			p.log.Info("health poller stopped", zap.String("endpoint", r.endpoint), zap.String("reason", "context done"))
		}
		p.mu.Unlock()
		cancel()
		close(r.done)
	}()
	return nil
}

// Stop 取消定时器与在途请求，丢弃在途结果并清空快照。幂等。
func (p *Poller) Stop() {
	p.mu.Lock()
	r := p.active
	if r == nil {
		p.mu.Unlock()
		return
	}
	p.active = nil
	p.latest = Status{}
	p.mu.Unlock()

	r.cancel()
	<-r.done
	p.log.Info("health poller stopped", zap.String("endpoint", r.endpoint))
}

// Latest 返回最近一次快照的副本
func (p *Poller) Latest() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest.Clone()
}

// Running 是否处于 polling 状态
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

func (p *Poller) loop(ctx context.Context, r *run) {
	ticker := p.opts.NewTicker(r.interval)
	defer ticker.Stop()

	p.tick(ctx, r)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.tick(ctx, r)
		}
	}
}

func (p *Poller) tick(ctx context.Context, r *run) {
	if !r.inflight.CompareAndSwap(false, true) {
		p.opts.Metrics.ObserveSkip()
		p.log.Debug("previous health poll still in flight, skipping tick", zap.String("endpoint", r.endpoint))
		return
	}

	timeout := pollTimeout(p.opts.Timeout, r.interval)

	go func() {
		pollCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		st := p.opts.Prober.Probe(pollCtx, r.endpoint)
		p.complete(r, st, time.Since(start))
	}()
}

// pollTimeout 单次探测的截止时间严格小于 interval，挂起的端点也能在一个周期内得到失败快照
func pollTimeout(configured, interval time.Duration) time.Duration {
	limit := interval * 9 / 10
	if limit <= 0 {
		limit = interval
	}
	if configured <= 0 || configured > limit {
		return limit
	}
	return configured
}

// complete 校验存活令牌后写入快照并投递
func (p *Poller) complete(r *run, st Status, took time.Duration) {
	p.mu.Lock()
	if p.active != r {
		r.inflight.Store(false)
		p.mu.Unlock()
		return
	}
	p.latest = st
	recovered := st.Healthy && r.polled && !r.healthy
	if recovered {
		r.failLog = &rate.Sometimes{First: 1, Interval: p.opts.FailureLogInterval}
	}
	r.healthy, r.polled = st.Healthy, true
	failLog := r.failLog

	// 先释放 in-flight 标记再投递：消费者看到快照时下一次 tick 一定不会被跳过。
	// 投递在锁内完成，下一次探测的 complete 只能排在其后，邮箱始终是 latest-wins。
	r.inflight.Store(false)
	select {
	case <-r.mailbox:
	default:
	}
	r.mailbox <- st
	p.mu.Unlock()

	p.opts.Metrics.ObservePoll(st.Healthy, took, st.CheckedAt)
	p.logResult(r.endpoint, st, took, recovered, failLog)
}

func (p *Poller) logResult(endpoint string, st Status, took time.Duration, recovered bool, failLog *rate.Sometimes) {
	if st.Healthy {
		if recovered {
			p.log.Info("health endpoint recovered", zap.String("endpoint", endpoint), zap.Duration("took", took))
			return
		}
		p.log.Debug("health poll ok",
			zap.String("endpoint", endpoint),
			zap.Duration("took", took),
			zap.String("transport_mode", st.Diagnostic(DiagTransportMode)))
		return
	}
	failLog.Do(func() {
		p.log.Warn("health poll failed",
			zap.String("endpoint", endpoint),
			zap.String("kind", string(st.Kind)),
			zap.String("error", st.Error),
			zap.Duration("took", took))
	})
}

func (p *Poller) dispatch(ctx context.Context, r *run, onUpdate UpdateFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-r.mailbox:
			p.deliver(r, st, onUpdate)
		}
	}
}

func (p *Poller) deliver(r *run, st Status, onUpdate UpdateFunc) {
	if onUpdate == nil {
		return
	}
	p.mu.Lock()
	alive := p.active == r
	p.mu.Unlock()
	if !alive {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("health status consumer panicked", zap.String("endpoint", r.endpoint), zap.Any("panic", rec))
		}
	}()
	onUpdate(st.Clone())
}
