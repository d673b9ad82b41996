package bridge

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"flowvis/pkg/domain"
)

// WireEvent 调试事件流上一行 JSON 解码出的中立模型
type WireEvent struct {
	Kind      domain.RenderKind
	UID       uint64
	Name      string
	File      string
	ParentUID uint64
	HasParent bool
	Raw       domain.RawDebugEvent
}

// ParseLine 将一行原始调试事件 JSON 转换为中立模型
func ParseLine(line []byte) (WireEvent, error) {
	if !gjson.ValidBytes(line) {
		return WireEvent{}, fmt.Errorf("非法的事件 JSON: %q", line)
	}
	doc := gjson.ParseBytes(line)

	kind := domain.RenderKind(doc.Get("kind").String())
	if kind != domain.KindTracked && kind != domain.KindTriggered {
		return WireEvent{}, fmt.Errorf("未知的事件类型: %q", doc.Get("kind").String())
	}

	ev := WireEvent{
		Kind: kind,
		UID:  doc.Get("uid").Uint(),
		Name: doc.Get("component.name").String(),
		File: doc.Get("component.file").String(),
		Raw: domain.RawDebugEvent{
			OperationType: doc.Get("event.operationType").String(),
			Key:           doc.Get("event.key").String(),
			Target:        doc.Get("event.target").String(),
		},
	}
	if old := doc.Get("event.oldValue"); old.Exists() {
		ev.Raw.OldValue = old.Value()
	}
	if nv := doc.Get("event.newValue"); nv.Exists() {
		ev.Raw.NewValue = nv.Value()
	}
	if p := doc.Get("component.parent"); p.Exists() {
		ev.ParentUID = p.Uint()
		ev.HasParent = true
	}
	return ev, nil
}

// EncodeFrame 将一条渲染事件编码为推送给外部面板的流帧
func EncodeFrame(session string, ev domain.RenderEvent) ([]byte, error) {
	frame := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		frame, err = sjson.SetBytes(frame, path, value)
	}

	set("session", session)
	set("kind", string(ev.Kind))
	set("component", ev.ComponentName)
	set("path", ev.ComponentPath)
	set("uid", ev.InstanceID)
	set("timestamp", ev.Timestamp)
	set("event.operationType", ev.Raw.OperationType)
	set("event.key", ev.Raw.Key)
	set("event.target", ev.Raw.Target)
	if ev.Metadata != nil {
		set("metadata.file", ev.Metadata.File)
		set("metadata.isSetup", ev.Metadata.IsSetup)
		set("metadata.props", ev.Metadata.Props)
		set("metadata.emits", ev.Metadata.Emits)
		if ev.Metadata.ParentName != "" {
			set("metadata.parentName", ev.Metadata.ParentName)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("编码流帧失败: %w", err)
	}
	return frame, nil
}

// EncodeErrorFrame 将核心捕获到的错误编码为流帧
func EncodeErrorFrame(session string, cause error, ctx map[string]any) ([]byte, error) {
	frame := []byte(`{}`)
	var err error
	frame, err = sjson.SetBytes(frame, "session", session)
	if err == nil {
		frame, err = sjson.SetBytes(frame, "kind", "error")
	}
	if err == nil {
		frame, err = sjson.SetBytes(frame, "error", cause.Error())
	}
	for k, v := range ctx {
		if err != nil {
			break
		}
		frame, err = sjson.SetBytes(frame, "context."+k, v)
	}
	if err != nil {
		return nil, fmt.Errorf("编码错误帧失败: %w", err)
	}
	return frame, nil
}
