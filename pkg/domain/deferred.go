package domain

import "sync"

// Deferred 显式的延迟求值容器：首次 Value 调用时计算，之后复用结果
// 用于把"记录时只存计算方式、输出时才真正取值"的惰性约定体现在类型上
type Deferred[T any] struct {
	once    sync.Once
	compute func() T
	value   T
}

// NewDeferred 创建延迟值
func NewDeferred[T any](compute func() T) *Deferred[T] {
	return &Deferred[T]{compute: compute}
}

// Value 取值，至多计算一次
func (d *Deferred[T]) Value() T {
	d.once.Do(func() {
		d.value = d.compute()
		d.compute = nil
	})
	return d.value
}
