package logger

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"flowvis/pkg/domain"
)

// ConsoleConfig 控制台 logger 配置
type ConsoleConfig struct {
	Level   string   // 日志级别
	Writers []string // 输出目标，"console" 和/或 "file"
	File    string   // 文件输出路径，启用 file writer 时使用
	Table   bool     // 按批次输出对齐表格
	Session string   // 监视会话标识，附加到每条日志
}

// Console 基于 zerolog 的控制台 logger，支持控制台与滚动文件双写
type Console struct {
	zl    zerolog.Logger
	table bool
	out   io.Writer
}

// NewConsole 创建控制台 logger
func NewConsole(cfg ConsoleConfig) *Console {
	var writers []io.Writer
	for _, w := range cfg.Writers {
		switch w {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
		case "file":
			file := cfg.File
			if file == "" {
				file = "flowvis.log"
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     7,
			})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.DebugLevel
	}

	out := zerolog.MultiLevelWriter(writers...)
	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("session", cfg.Session).
		Logger()

	return &Console{zl: zl, table: cfg.Table, out: out}
}

// Tracked 输出依赖追踪事件
func (c *Console) Tracked(ev domain.RenderEvent) {
	c.event(ev).Msg("渲染依赖追踪")
}

// Triggered 输出重渲染触发事件
func (c *Console) Triggered(ev domain.RenderEvent) {
	c.event(ev).Msg("渲染重新触发")
}

// Error 输出核心捕获到的错误
func (c *Console) Error(err error, ctx map[string]any) {
	c.zl.Error().Err(err).Fields(ctx).Msg("渲染事件处理失败")
}

// Batch 按冲刷批次输出，表格模式下渲染对齐表格块
func (c *Console) Batch(component string, events []domain.RenderEvent) {
	if !c.table {
		for _, ev := range events {
			if ev.Kind == domain.KindTriggered {
				c.Triggered(ev)
			} else {
				c.Tracked(ev)
			}
		}
		return
	}

	tw := tabwriter.NewWriter(c.out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s (%d)\n", component, len(events))
	fmt.Fprintln(tw, "kind\top\tkey\ttarget\tpath")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			ev.Kind, ev.Raw.OperationType, ev.Raw.Key, ev.Raw.Target, ev.ComponentPath)
	}
	_ = tw.Flush()
}

func (c *Console) event(ev domain.RenderEvent) *zerolog.Event {
	e := c.zl.Debug().
		Str("component", ev.ComponentName).
		Str("path", ev.ComponentPath).
		Str("op", ev.Raw.OperationType).
		Str("key", ev.Raw.Key).
		Uint64("uid", ev.InstanceID)
	if ev.Metadata != nil && ev.Metadata.File != "" {
		e = e.Str("file", ev.Metadata.File)
	}
	return e
}
