package logger

import "flowvis/pkg/domain"

// Logger 渲染事件输出端的窄契约，由核心调用、外部协作方实现
// 返回值不被检查；实现抛出的 panic 由 Monitor 边界吸收
type Logger interface {
	// Tracked 输出一条依赖追踪事件
	Tracked(ev domain.RenderEvent)
	// Triggered 输出一条重渲染触发事件
	Triggered(ev domain.RenderEvent)
	// Error 输出核心捕获到的错误及其上下文
	Error(err error, ctx map[string]any)
}

// BatchLogger 可选升级接口：实现者按冲刷批次整体接收事件
// Monitor 在冲刷时优先走该接口，否则逐条退化到 Tracked/Triggered
type BatchLogger interface {
	Batch(component string, events []domain.RenderEvent)
}

// Nop 丢弃一切输出的实现
type Nop struct{}

// NewNop 创建空实现
func NewNop() *Nop { return &Nop{} }

func (*Nop) Tracked(domain.RenderEvent)   {}
func (*Nop) Triggered(domain.RenderEvent) {}
func (*Nop) Error(error, map[string]any)  {}
