package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"flowvis/pkg/domain"
)

// TestParseLine 测试调试事件行解析
func TestParseLine(t *testing.T) {
	t.Run("完整事件行", func(t *testing.T) {
		line := []byte(`{"kind":"triggered","uid":12,` +
			`"component":{"name":"TodoList","file":"src/components/TodoList.vue","parent":3},` +
			`"event":{"operationType":"set","key":"items","target":"Reactive<Array>","oldValue":1,"newValue":2}}`)

		ev, err := ParseLine(line)
		require.NoError(t, err)
		assert.Equal(t, domain.KindTriggered, ev.Kind)
		assert.Equal(t, uint64(12), ev.UID)
		assert.Equal(t, "TodoList", ev.Name)
		assert.Equal(t, "src/components/TodoList.vue", ev.File)
		assert.True(t, ev.HasParent)
		assert.Equal(t, uint64(3), ev.ParentUID)
		assert.Equal(t, "set", ev.Raw.OperationType)
		assert.Equal(t, "items", ev.Raw.Key)
		assert.Equal(t, float64(1), ev.Raw.OldValue)
		assert.Equal(t, float64(2), ev.Raw.NewValue)
	})

	t.Run("无父引用", func(t *testing.T) {
		ev, err := ParseLine([]byte(`{"kind":"tracked","uid":1,"component":{"name":"App"},"event":{"operationType":"get","key":"title"}}`))
		require.NoError(t, err)
		assert.False(t, ev.HasParent)
		assert.Nil(t, ev.Raw.OldValue)
	})

	t.Run("非法 JSON 报错", func(t *testing.T) {
		_, err := ParseLine([]byte(`{kind:`))
		assert.Error(t, err)
	})

	t.Run("未知事件类型报错", func(t *testing.T) {
		_, err := ParseLine([]byte(`{"kind":"mounted","uid":1}`))
		assert.Error(t, err)
	})
}

// TestEncodeFrame 测试流帧编码
func TestEncodeFrame(t *testing.T) {
	t.Run("基础字段", func(t *testing.T) {
		ev := domain.RenderEvent{
			Kind:          domain.KindTracked,
			Raw:           domain.RawDebugEvent{OperationType: "get", Key: "items", Target: "Reactive<Array>"},
			ComponentName: "TodoList",
			ComponentPath: "App → TodoList",
			Timestamp:     1700000000000,
			InstanceID:    12,
		}

		frame, err := EncodeFrame("sess-1", ev)
		require.NoError(t, err)
		doc := gjson.ParseBytes(frame)
		assert.Equal(t, "sess-1", doc.Get("session").String())
		assert.Equal(t, "tracked", doc.Get("kind").String())
		assert.Equal(t, "TodoList", doc.Get("component").String())
		assert.Equal(t, "App → TodoList", doc.Get("path").String())
		assert.Equal(t, uint64(12), doc.Get("uid").Uint())
		assert.Equal(t, "items", doc.Get("event.key").String())
		assert.False(t, doc.Get("metadata").Exists())
	})

	t.Run("附带元数据", func(t *testing.T) {
		ev := domain.RenderEvent{
			Kind:          domain.KindTriggered,
			ComponentName: "TodoList",
			Metadata: &domain.ComponentMetadata{
				Name:       "TodoList",
				File:       "src/components/TodoList.vue",
				Props:      []string{"items"},
				Emits:      []string{"select"},
				IsSetup:    true,
				ParentName: "App",
			},
		}

		frame, err := EncodeFrame("sess-1", ev)
		require.NoError(t, err)
		doc := gjson.ParseBytes(frame)
		assert.Equal(t, "src/components/TodoList.vue", doc.Get("metadata.file").String())
		assert.True(t, doc.Get("metadata.isSetup").Bool())
		assert.Equal(t, "App", doc.Get("metadata.parentName").String())
		assert.Equal(t, "items", doc.Get("metadata.props.0").String())
	})
}

// TestEncodeErrorFrame 测试错误帧编码
func TestEncodeErrorFrame(t *testing.T) {
	frame, err := EncodeErrorFrame("sess-1", assert.AnError, map[string]any{"kind": "tracked"})
	require.NoError(t, err)
	doc := gjson.ParseBytes(frame)
	assert.Equal(t, "error", doc.Get("kind").String())
	assert.Equal(t, assert.AnError.Error(), doc.Get("error").String())
	assert.Equal(t, "tracked", doc.Get("context.kind").String())
}
