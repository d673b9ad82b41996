package batch

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"flowvis/pkg/domain"
)

// Sink 下游接收端，每次冲刷对每个组件恰好调用一次
type Sink func(component string, events []domain.RenderEvent)

// Config 批处理配置
type Config struct {
	Enabled bool
	Window  time.Duration
	Sink    Sink
}

// Batcher 事件批处理器：按组件缓冲事件，由单个全局尾沿去抖定时器统一冲刷
// 任意组件的新事件都会重置同一个倒计时，突发事件被合并进一次冲刷
type Batcher struct {
	enabled bool
	sink    Sink

	mu        sync.Mutex
	buf       map[string][]domain.RenderEvent
	order     []string
	debounced func(func())
}

// New 创建批处理器
func New(cfg Config) *Batcher {
	return &Batcher{
		enabled:   cfg.Enabled,
		sink:      cfg.Sink,
		buf:       make(map[string][]domain.RenderEvent),
		debounced: debounce.New(cfg.Window),
	}
}

// Record 记录一条事件
// 批处理关闭时同步直达下游；开启时入缓冲并重置全局去抖定时器
func (b *Batcher) Record(component string, ev domain.RenderEvent) {
	if !b.enabled {
		b.sink(component, []domain.RenderEvent{ev})
		return
	}

	b.mu.Lock()
	if _, ok := b.buf[component]; !ok {
		b.order = append(b.order, component)
	}
	b.buf[component] = append(b.buf[component], ev)
	b.mu.Unlock()

	b.debounced(b.Flush)
}

// Flush 立即冲刷：整个缓冲原子换出，逐组件按首次入缓冲的顺序交付
// 缓冲为空时不调用下游
func (b *Batcher) Flush() {
	b.mu.Lock()
	buf, order := b.buf, b.order
	b.buf = make(map[string][]domain.RenderEvent)
	b.order = nil
	b.mu.Unlock()

	for _, component := range order {
		if events := buf[component]; len(events) > 0 {
			b.sink(component, events)
		}
	}
}

// Reset 丢弃所有未冲刷的事件
func (b *Batcher) Reset() {
	b.mu.Lock()
	b.buf = make(map[string][]domain.RenderEvent)
	b.order = nil
	b.mu.Unlock()
}
