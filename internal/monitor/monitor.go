package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowvis/internal/batch"
	"flowvis/internal/config"
	"flowvis/internal/filter"
	"flowvis/internal/identity"
	"flowvis/internal/logger"
	"flowvis/pkg/domain"
)

// Config 监视器构造配置
type Config struct {
	Options           *config.Options
	CustomLogger      logger.Logger
	OnRenderTracked   func(domain.RenderEvent)
	OnRenderTriggered func(domain.RenderEvent)
}

// Monitor 渲染观测协调器：串联身份解析、过滤、批处理与 logger 输出，
// 并承担错误隔离边界，任何输出失败都不得波及宿主的渲染路径
// 配置在构造时合并一次，此后不可变
type Monitor struct {
	opts    config.Options
	session string
	log     logger.Logger

	resolver *identity.Resolver
	filter   *filter.Engine
	batcher  *batch.Batcher

	onTracked   func(domain.RenderEvent)
	onTriggered func(domain.RenderEvent)
}

// RenderHooks 附加到单个组件实例的两个生命周期回调，
// 由宿主在依赖读取和依赖失效时分别调用
type RenderHooks struct {
	OnTracked   func(raw domain.RawDebugEvent)
	OnTriggered func(raw domain.RawDebugEvent)
}

// New 创建监视器，显式配置覆盖默认值
func New(cfg Config) *Monitor {
	opts := config.NewOptions()
	if cfg.Options != nil {
		opts = cfg.Options
	}
	if opts.BatchWindowMS <= 0 {
		opts.BatchWindowMS = 300
	}

	m := &Monitor{
		opts:        *opts,
		session:     uuid.NewString(),
		resolver:    identity.New(),
		filter:      filter.New(opts.IncludeComponents, opts.ExcludeComponents),
		onTracked:   cfg.OnRenderTracked,
		onTriggered: cfg.OnRenderTriggered,
	}
	m.log = m.selectLogger(cfg.CustomLogger)
	m.batcher = batch.New(batch.Config{
		Enabled: opts.BatchLogs,
		Window:  time.Duration(opts.BatchWindowMS) * time.Millisecond,
		Sink:    m.deliver,
	})
	return m
}

// selectLogger 按优先级选择输出端：自定义实例 > 具名选择 > 默认控制台
func (m *Monitor) selectLogger(custom logger.Logger) logger.Logger {
	if custom != nil {
		return custom
	}
	switch m.opts.Logger {
	case "ui":
		return logger.NewStream(m.session, 256)
	case "none":
		return logger.NewNop()
	default:
		return logger.NewConsole(logger.ConsoleConfig{
			Level:   m.opts.Log.Level,
			Writers: m.opts.Log.Writer,
			File:    m.opts.Log.File,
			Table:   m.opts.LogToTable,
			Session: m.session,
		})
	}
}

// Session 返回本次监视会话标识
func (m *Monitor) Session() string { return m.session }

// Logger 返回当前生效的输出端
func (m *Monitor) Logger() logger.Logger { return m.log }

// ShouldMonitorComponent 判定组件是否被观测
func (m *Monitor) ShouldMonitorComponent(name string, h *domain.ComponentHandle) bool {
	return m.filter.ShouldMonitor(name, h)
}

// Attach 在组件创建时调用：通过准入检查后返回该实例的两个事件回调
// 元数据此时只建立延迟计算，首个真正需要输出的事件到来前不做任何提取
func (m *Monitor) Attach(h *domain.ComponentHandle) (*RenderHooks, bool) {
	if h == nil {
		return nil, false
	}
	name := m.resolver.ResolveName(h)
	if !m.filter.ShouldMonitor(name, h) {
		return nil, false
	}

	path := m.resolver.ResolvePath(h)
	meta := domain.NewDeferred(func() domain.ComponentMetadata {
		return m.resolver.ResolveMetadata(h)
	})

	emit := func(kind domain.RenderKind) func(domain.RawDebugEvent) {
		return func(raw domain.RawDebugEvent) {
			if !m.opts.Enabled {
				return
			}
			ev := domain.RenderEvent{
				Kind:          kind,
				Raw:           raw,
				ComponentName: name,
				ComponentPath: path,
				Timestamp:     time.Now().UnixMilli(),
				InstanceID:    h.UID,
			}
			m.dispatch(kind, ev, meta)
		}
	}
	return &RenderHooks{
		OnTracked:   emit(domain.KindTracked),
		OnTriggered: emit(domain.KindTriggered),
	}, true
}

// Detach 组件卸载时调用，驱逐其身份缓存
func (m *Monitor) Detach(h *domain.ComponentHandle) {
	if h == nil {
		return
	}
	m.resolver.Forget(h.UID)
}

// LogRenderEvent 记录一条渲染事件
// 禁用时立即返回；事件携带的句柄引用在交付前剥离
func (m *Monitor) LogRenderEvent(kind domain.RenderKind, ev domain.RenderEvent) {
	if !m.opts.Enabled {
		return
	}

	var meta *domain.Deferred[domain.ComponentMetadata]
	if h := ev.Handle(); h != nil {
		meta = domain.NewDeferred(func() domain.ComponentMetadata {
			return m.resolver.ResolveMetadata(h)
		})
	}
	m.dispatch(kind, ev, meta)
}

// dispatch 事件分发：补全元数据、剥离句柄、经批处理器送达 logger、触发用户回调
// 全程处于错误隔离边界内，logger 或回调抛出的 panic 被捕获并转为 Error 输出
func (m *Monitor) dispatch(kind domain.RenderKind, ev domain.RenderEvent, meta *domain.Deferred[domain.ComponentMetadata]) {
	defer func() {
		if r := recover(); r != nil {
			m.reportError(r, map[string]any{"kind": string(kind), "component": ev.ComponentName})
		}
	}()

	ev.Kind = kind
	if meta != nil {
		md := meta.Value()
		ev.Metadata = &md
	}
	ev = ev.Stripped()

	m.batcher.Record(ev.ComponentName, ev)

	switch kind {
	case domain.KindTriggered:
		if m.onTriggered != nil {
			m.onTriggered(ev)
		}
	default:
		if m.onTracked != nil {
			m.onTracked(ev)
		}
	}
}

// deliver 批处理冲刷的下游：优先整批交付，否则逐条按类型分发
// 冲刷可能跑在定时器协程上，同样需要错误隔离
func (m *Monitor) deliver(component string, events []domain.RenderEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.reportError(r, map[string]any{"component": component, "count": len(events)})
		}
	}()

	if bl, ok := m.log.(logger.BatchLogger); ok {
		bl.Batch(component, events)
		return
	}
	for _, ev := range events {
		switch ev.Kind {
		case domain.KindTriggered:
			m.log.Triggered(ev)
		default:
			m.log.Tracked(ev)
		}
	}
}

// reportError 把捕获到的 panic 转为 Error 输出，输出端再失败则静默放弃
func (m *Monitor) reportError(r any, ctx map[string]any) {
	defer func() { _ = recover() }()
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}
	m.log.Error(err, ctx)
}

// Flush 立即冲刷未交付的批次
func (m *Monitor) Flush() { m.batcher.Flush() }

// Close 关停监视器，冲刷残留批次
func (m *Monitor) Close() {
	m.batcher.Flush()
}
