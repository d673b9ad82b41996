package logger

import (
	"flowvis/internal/bridge"
	"flowvis/pkg/domain"
)

// Stream 面向外部可视化面板的 logger：把事件编码为 JSON 帧
// 经缓冲通道推送，通道满时丢帧而不阻塞渲染路径
type Stream struct {
	session string
	frames  chan []byte
}

// NewStream 创建流 logger，size 为通道缓冲大小
func NewStream(session string, size int) *Stream {
	if size <= 0 {
		size = 256
	}
	return &Stream{session: session, frames: make(chan []byte, size)}
}

// Frames 返回帧通道，由外部面板协作方消费
func (s *Stream) Frames() <-chan []byte { return s.frames }

// Tracked 推送依赖追踪事件帧
func (s *Stream) Tracked(ev domain.RenderEvent) { s.push(ev) }

// Triggered 推送重渲染触发事件帧
func (s *Stream) Triggered(ev domain.RenderEvent) { s.push(ev) }

// Error 推送错误帧
func (s *Stream) Error(err error, ctx map[string]any) {
	frame, encErr := bridge.EncodeErrorFrame(s.session, err, ctx)
	if encErr != nil {
		return
	}
	s.send(frame)
}

func (s *Stream) push(ev domain.RenderEvent) {
	frame, err := bridge.EncodeFrame(s.session, ev)
	if err != nil {
		return
	}
	s.send(frame)
}

func (s *Stream) send(frame []byte) {
	select {
	case s.frames <- frame:
	default:
	}
}
