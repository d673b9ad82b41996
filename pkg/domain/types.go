package domain

// RenderKind 渲染事件类型
type RenderKind string

const (
	// KindTracked 渲染期间建立了一个响应式依赖
	KindTracked RenderKind = "tracked"
	// KindTriggered 已建立依赖的值发生变化，使上一次渲染失效
	KindTriggered RenderKind = "triggered"
)

// TypeDescriptor 组件类型描述，宿主框架提供的命名线索集合
// 所有字段均为可选，核心只读不写
type TypeDescriptor struct {
	Name         string         // 声明的组件名
	InternalName string         // 框架为匿名组件生成的内部名
	Options      map[string]any // 旧式组件定义的选项对象
	File         string         // 注册的源文件路径
	Props        map[string]any // 声明的属性定义
	Emits        any            // 声明的事件，数组式或映射式
}

// ComponentHandle 宿主框架中一个活动组件实例的句柄
// 核心不持有其所有权，parent 链由外部提供，可能为空甚至成环
type ComponentHandle struct {
	UID        uint64
	Type       *TypeDescriptor
	SetupState map[string]any
	Parent     *ComponentHandle
}

// ResolvedIdentity 解析后的组件身份
type ResolvedIdentity struct {
	Name string
	Path string
}

// ComponentMetadata 组件元数据快照，延迟计算，不回引句柄
type ComponentMetadata struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	UID        uint64   `json:"uid"`
	File       string   `json:"file,omitempty"`
	Props      []string `json:"props"`
	Emits      []string `json:"emits"`
	IsSetup    bool     `json:"isSetup"`
	ParentName string   `json:"parentName,omitempty"`
}

// RawDebugEvent 宿主响应式系统交付的原始调试事件，仅透传
type RawDebugEvent struct {
	OperationType string `json:"operationType"`
	Key           string `json:"key"`
	Target        string `json:"target"`
	OldValue      any    `json:"oldValue,omitempty"`
	NewValue      any    `json:"newValue,omitempty"`
}

// RenderEvent 一次被观测到的渲染事件，构造后不可变
type RenderEvent struct {
	Kind          RenderKind         `json:"kind"`
	Raw           RawDebugEvent      `json:"raw"`
	ComponentName string             `json:"componentName"`
	ComponentPath string             `json:"componentPath"`
	Timestamp     int64              `json:"timestamp"`
	InstanceID    uint64             `json:"instanceId"`
	Metadata      *ComponentMetadata `json:"metadata,omitempty"`

	// handle 仅在分发前的惰性元数据计算中使用，交付给 logger 前剥离
	handle *ComponentHandle
}

// WithHandle 返回携带句柄引用的事件副本
func (e RenderEvent) WithHandle(h *ComponentHandle) RenderEvent {
	e.handle = h
	return e
}

// Handle 返回事件携带的句柄引用，可能为 nil
func (e RenderEvent) Handle() *ComponentHandle { return e.handle }

// Stripped 返回剥离句柄引用后的事件副本，避免延长框架内部对象的生命周期
func (e RenderEvent) Stripped() RenderEvent {
	e.handle = nil
	return e
}
