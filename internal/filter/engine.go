package filter

import (
	"regexp"
	"strings"
	"sync"

	"flowvis/pkg/domain"
)

// Engine 组件过滤引擎：依据 include/exclude 通配模式与外部组件启发式
// 决定某组件的渲染事件是否被观测
type Engine struct {
	include []string
	exclude []string

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// New 创建过滤引擎
func New(include, exclude []string) *Engine {
	return &Engine{
		include: include,
		exclude: exclude,
		cache:   make(map[string]*regexp.Regexp),
	}
}

// ShouldMonitor 判定是否观测该组件，依次应用：
// 外部组件无条件拒绝 > include 白名单 > exclude 黑名单
func (e *Engine) ShouldMonitor(name string, h *domain.ComponentHandle) bool {
	if h != nil && IsExternal(h) {
		return false
	}
	if len(e.include) > 0 {
		return e.matchAny(name, e.include)
	}
	return !e.matchAny(name, e.exclude)
}

func (e *Engine) matchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if e.match(name, p) {
			return true
		}
	}
	return false
}

// match 单模式匹配：不含 * 时为大小写不敏感的精确比较，
// 含 * 时编译为全锚定正则，* 匹配零个或多个任意字符
// 空模式与纯 * 模式匹配一切，这是文档化的行为而非缺陷
func (e *Engine) match(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return strings.EqualFold(name, pattern)
	}
	re, err := e.compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

// compile 编译通配模式，结果缓存复用
func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.cache[pattern]; ok {
		return re, nil
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	e.cache[pattern] = re
	return re, nil
}
