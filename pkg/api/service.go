package api

import (
	"flowvis/internal/logger"
	"flowvis/internal/monitor"
	"flowvis/pkg/domain"
)

// Service 服务接口
type Service interface {
	// Attach 在组件创建时附加观测，通过准入检查后返回事件回调
	Attach(h *domain.ComponentHandle) (*monitor.RenderHooks, bool)

	// Detach 组件卸载时解除观测并驱逐身份缓存
	Detach(h *domain.ComponentHandle)

	// ShouldMonitor 判定组件是否被观测
	ShouldMonitor(name string, h *domain.ComponentHandle) bool

	// LogRenderEvent 记录一条渲染事件
	LogRenderEvent(kind domain.RenderKind, ev domain.RenderEvent)

	// Flush 立即冲刷未交付的批次
	Flush()

	// Close 关停并冲刷残留批次
	Close()

	// Session 返回监视会话标识
	Session() string

	// Logger 返回当前生效的输出端
	Logger() logger.Logger
}

// service 适配 monitor 到服务接口
type service struct {
	*monitor.Monitor
}

// ShouldMonitor 判定组件是否被观测
func (s *service) ShouldMonitor(name string, h *domain.ComponentHandle) bool {
	return s.Monitor.ShouldMonitorComponent(name, h)
}

// NewService 创建并返回服务接口实现
func NewService(cfg monitor.Config) Service {
	return &service{Monitor: monitor.New(cfg)}
}
