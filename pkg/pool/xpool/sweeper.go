package xpool

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/sessionkit/pkg/observability/xmetrics"
)

// sweeper 按固定周期清扫闲置超时的条目。
// 调度基于 robfig/cron（秒粒度），清扫本身与 Remove 走同一拆除路径。
type sweeper struct {
	pool   *poolImpl
	period time.Duration
	cron   *cron.Cron
}

func newSweeper(p *poolImpl, period time.Duration) *sweeper {
	return &sweeper{
		pool:   p,
		period: period,
		cron:   cron.New(),
	}
}

func (s *sweeper) start() {
	s.cron.Schedule(cron.Every(s.period), cron.FuncJob(func() {
		s.pool.sweepOnce(time.Now())
	}))
	s.cron.Start()
}

// stop 停止调度并等待进行中的清扫完成。
func (s *sweeper) stop() {
	<-s.cron.Stop().Done()
}

// sweepOnce 执行一轮清扫，返回淘汰条目数。
//
// 对每个条目，闲置判定与迁出 Active 在条目锁下一步完成
// （transitionIfIdle），因此不会淘汰刚被访问续期或正被访问的条目；
// 构建中的条目尚未入池，天然不可见。
func (p *poolImpl) sweepOnce(now time.Time) int {
	window := p.opts.inactivityTimeout
	if window <= 0 {
		return 0
	}

	p.mu.RLock()
	snapshot := make(map[string]*entry, len(p.entries))
	for k, e := range p.entries {
		snapshot[k] = e
	}
	p.mu.RUnlock()

	evicted := 0
	for key, e := range snapshot {
		if !e.transitionIfIdle(now, window) {
			continue
		}
		// 按身份删除：key 可能已被并发移除后重建。
		p.detachIf(key, e)
		if err := p.teardown(context.Background(), e, xmetrics.ReasonEvicted); err != nil {
			p.logWarn("xpool: teardown failed during eviction",
				slog.String("key", key),
				slog.String("entry_id", e.id),
				slog.Any("error", err))
		}
		evicted++
	}
	if evicted > 0 {
		p.logDebug("xpool: sweep finished", slog.Int("evicted", evicted))
	}
	return evicted
}
