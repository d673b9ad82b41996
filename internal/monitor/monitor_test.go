package monitor

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowvis/internal/config"
	"flowvis/internal/logger"
	"flowvis/pkg/domain"
)

// fakeLogger 记录所有调用的测试桩，故意不实现 BatchLogger
type fakeLogger struct {
	mu        sync.Mutex
	tracked   []domain.RenderEvent
	triggered []domain.RenderEvent
	errors    []error
	panicOn   string
}

func (f *fakeLogger) Tracked(ev domain.RenderEvent) {
	if f.panicOn == "tracked" {
		panic(errors.New("tracked 炸了"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, ev)
}

func (f *fakeLogger) Triggered(ev domain.RenderEvent) {
	if f.panicOn == "triggered" {
		panic(errors.New("triggered 炸了"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggered = append(f.triggered, ev)
}

func (f *fakeLogger) Error(err error, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, err)
}

func unbatched() *config.Options {
	o := config.NewOptions()
	o.BatchLogs = false
	return o
}

func handle(uid uint64, name, file string) *domain.ComponentHandle {
	return &domain.ComponentHandle{UID: uid, Type: &domain.TypeDescriptor{Name: name, File: file}}
}

// TestLogRenderEvent 测试事件分发主路径
func TestLogRenderEvent(t *testing.T) {
	t.Run("按类型分发到对应方法", func(t *testing.T) {
		fl := &fakeLogger{}
		m := New(Config{Options: unbatched(), CustomLogger: fl})

		m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App"})
		m.LogRenderEvent(domain.KindTriggered, domain.RenderEvent{ComponentName: "App"})

		assert.Len(t, fl.tracked, 1)
		assert.Len(t, fl.triggered, 1)
		assert.Empty(t, fl.errors)
	})

	t.Run("携带句柄时补全元数据并剥离句柄", func(t *testing.T) {
		fl := &fakeLogger{}
		m := New(Config{Options: unbatched(), CustomLogger: fl})

		h := handle(7, "TodoList", "src/components/TodoList.vue")
		ev := domain.RenderEvent{ComponentName: "TodoList", InstanceID: 7}.WithHandle(h)
		m.LogRenderEvent(domain.KindTracked, ev)

		require.Len(t, fl.tracked, 1)
		got := fl.tracked[0]
		assert.Nil(t, got.Handle())
		require.NotNil(t, got.Metadata)
		assert.Equal(t, "TodoList", got.Metadata.Name)
		assert.Equal(t, uint64(7), got.Metadata.UID)
	})

	t.Run("禁用时零输出零回调", func(t *testing.T) {
		fl := &fakeLogger{}
		opts := unbatched()
		opts.Enabled = false
		calls := 0
		m := New(Config{
			Options:           opts,
			CustomLogger:      fl,
			OnRenderTracked:   func(domain.RenderEvent) { calls++ },
			OnRenderTriggered: func(domain.RenderEvent) { calls++ },
		})

		m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App"})
		m.LogRenderEvent(domain.KindTriggered, domain.RenderEvent{ComponentName: "App"})

		assert.Empty(t, fl.tracked)
		assert.Empty(t, fl.triggered)
		assert.Empty(t, fl.errors)
		assert.Zero(t, calls)
	})

	t.Run("logger 抛出不外传且恰好一次 Error", func(t *testing.T) {
		fl := &fakeLogger{panicOn: "tracked"}
		m := New(Config{Options: unbatched(), CustomLogger: fl})

		assert.NotPanics(t, func() {
			m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App"})
		})
		require.Len(t, fl.errors, 1)
		assert.ErrorContains(t, fl.errors[0], "tracked 炸了")
	})

	t.Run("用户回调收到剥离句柄后的载荷", func(t *testing.T) {
		fl := &fakeLogger{}
		var got *domain.RenderEvent
		m := New(Config{
			Options:      unbatched(),
			CustomLogger: fl,
			OnRenderTriggered: func(ev domain.RenderEvent) {
				got = &ev
			},
		})

		h := handle(9, "Sidebar", "src/components/Sidebar.vue")
		m.LogRenderEvent(domain.KindTriggered, domain.RenderEvent{ComponentName: "Sidebar"}.WithHandle(h))

		require.NotNil(t, got)
		assert.Nil(t, got.Handle())
		require.NotNil(t, got.Metadata)
		assert.Equal(t, "Sidebar", got.Metadata.Name)
	})

	t.Run("回调抛出同样被边界吸收", func(t *testing.T) {
		fl := &fakeLogger{}
		m := New(Config{
			Options:         unbatched(),
			CustomLogger:    fl,
			OnRenderTracked: func(domain.RenderEvent) { panic("回调炸了") },
		})

		assert.NotPanics(t, func() {
			m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App"})
		})
		require.Len(t, fl.errors, 1)
	})
}

// TestAttach 测试组件创建时的准入与回调
func TestAttach(t *testing.T) {
	t.Run("被排除的组件不返回回调", func(t *testing.T) {
		opts := unbatched()
		opts.ExcludeComponents = []string{"Todo*"}
		m := New(Config{Options: opts, CustomLogger: &fakeLogger{}})

		_, ok := m.Attach(handle(1, "TodoList", "src/components/TodoList.vue"))
		assert.False(t, ok)
	})

	t.Run("外部组件不返回回调", func(t *testing.T) {
		m := New(Config{Options: unbatched(), CustomLogger: &fakeLogger{}})

		_, ok := m.Attach(handle(2, "ElInput", "node_modules/element-plus/es/input.mjs"))
		assert.False(t, ok)
	})

	t.Run("准入后回调驱动输出", func(t *testing.T) {
		fl := &fakeLogger{}
		m := New(Config{Options: unbatched(), CustomLogger: fl})

		hooks, ok := m.Attach(handle(3, "App", "src/App.vue"))
		require.True(t, ok)

		hooks.OnTracked(domain.RawDebugEvent{OperationType: "get", Key: "items"})
		hooks.OnTriggered(domain.RawDebugEvent{OperationType: "set", Key: "items"})

		require.Len(t, fl.tracked, 1)
		require.Len(t, fl.triggered, 1)
		assert.Equal(t, "App", fl.tracked[0].ComponentName)
		assert.Equal(t, "items", fl.tracked[0].Raw.Key)
		require.NotNil(t, fl.triggered[0].Metadata)
		assert.Equal(t, "App", fl.triggered[0].Metadata.Name)
	})
}

// TestBatchedDelivery 测试经批处理的交付
func TestBatchedDelivery(t *testing.T) {
	t.Run("同组件两条事件合并为一次交付", func(t *testing.T) {
		fl := &fakeLogger{}
		opts := config.NewOptions()
		opts.BatchWindowMS = 20
		m := New(Config{Options: opts, CustomLogger: fl})

		m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App", Raw: domain.RawDebugEvent{Key: "a"}})
		m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App", Raw: domain.RawDebugEvent{Key: "b"}})

		assert.Empty(t, fl.tracked)
		m.Flush()

		require.Len(t, fl.tracked, 2)
		assert.Equal(t, "a", fl.tracked[0].Raw.Key)
		assert.Equal(t, "b", fl.tracked[1].Raw.Key)
	})
}

// TestLoggerSelection 测试输出端优先级
func TestLoggerSelection(t *testing.T) {
	t.Run("自定义实例优先于具名选择", func(t *testing.T) {
		fl := &fakeLogger{}
		opts := unbatched()
		opts.Logger = "none"
		m := New(Config{Options: opts, CustomLogger: fl})

		m.LogRenderEvent(domain.KindTracked, domain.RenderEvent{ComponentName: "App"})
		assert.Len(t, fl.tracked, 1)
	})

	t.Run("none 选择空实现", func(t *testing.T) {
		opts := unbatched()
		opts.Logger = "none"
		m := New(Config{Options: opts})
		assert.IsType(t, &logger.Nop{}, m.Logger())
	})

	t.Run("ui 选择流输出", func(t *testing.T) {
		opts := unbatched()
		opts.Logger = "ui"
		m := New(Config{Options: opts})
		assert.IsType(t, &logger.Stream{}, m.Logger())
	})
}
