package identity

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"flowvis/pkg/domain"
)

const (
	// UnknownName 句柄缺失时的名称
	UnknownName = "Unknown"
	// AnonymousName 所有命名策略均失败时的兜底名称
	AnonymousName = "Anonymous"
	// PathSeparator 祖先路径的连接符
	PathSeparator = " → "
	// CircularMarker 父链成环时追加到路径末尾的哨兵标记
	CircularMarker = "[CIRCULAR]"
)

var (
	// 严格模式：取已知扩展名前以大写字母开头的文件名主干
	strictFileRe = regexp.MustCompile(`([A-Z][A-Za-z0-9]+)\.(?:vue|[jt]sx?)$`)
	// 宽松模式：严格模式不中时退而求其次，任意非分隔符主干
	laxFileRe = regexp.MustCompile(`([^/\\]+)\.(?:vue|[jt]sx?)$`)
)

// Resolver 组件身份解析器：按策略链推导名称与祖先路径，并按实例 uid 记忆化
// 缓存只存 uid 到字符串的映射，不持有句柄引用，不会延长实例生命周期
type Resolver struct {
	mu    sync.RWMutex
	names map[uint64]string
	paths map[uint64]string
}

// New 创建解析器
func New() *Resolver {
	return &Resolver{
		names: make(map[uint64]string),
		paths: make(map[uint64]string),
	}
}

// strategy 单个命名策略，失败返回 ok=false
type strategy func(h *domain.ComponentHandle) (string, bool)

// nameStrategies 有序命名策略链，先成功者胜出
var nameStrategies = []strategy{
	func(h *domain.ComponentHandle) (string, bool) {
		return h.Type.Name, h.Type.Name != ""
	},
	func(h *domain.ComponentHandle) (string, bool) {
		return h.Type.InternalName, h.Type.InternalName != ""
	},
	func(h *domain.ComponentHandle) (string, bool) {
		name, _ := h.Type.Options["name"].(string)
		return name, name != ""
	},
	func(h *domain.ComponentHandle) (string, bool) {
		m := strictFileRe.FindStringSubmatch(h.Type.File)
		if m == nil {
			return "", false
		}
		return m[1], true
	},
	func(h *domain.ComponentHandle) (string, bool) {
		m := laxFileRe.FindStringSubmatch(h.Type.File)
		if m == nil {
			return "", false
		}
		return m[1], true
	},
	func(h *domain.ComponentHandle) (string, bool) {
		return fmt.Sprintf("Component-%d", h.UID), true
	},
}

// ResolveName 解析组件显示名，结果按 uid 记忆化，解析过程永不抛出
func (r *Resolver) ResolveName(h *domain.ComponentHandle) string {
	if h == nil {
		return UnknownName
	}

	r.mu.RLock()
	if name, ok := r.names[h.UID]; ok {
		r.mu.RUnlock()
		return name
	}
	r.mu.RUnlock()

	name := resolveNameOnce(h)

	r.mu.Lock()
	r.names[h.UID] = name
	r.mu.Unlock()
	return name
}

// resolveNameOnce 按策略链解析一次，单个策略 panic 时静默换下一个
func resolveNameOnce(h *domain.ComponentHandle) string {
	for _, s := range nameStrategies {
		if name, ok := tryStrategy(s, h); ok {
			return name
		}
	}
	return AnonymousName
}

// tryStrategy 隔离单个策略的 panic：外部数据不可信，坏策略只作失败处理
func tryStrategy(s strategy, h *domain.ComponentHandle) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	return s(h)
}

// ResolvePath 解析组件的祖先路径，自根到叶用 " → " 连接
// 父链由外部提供、可能成环，检测到重访立即终止并追加 [CIRCULAR] 哨兵
func (r *Resolver) ResolvePath(h *domain.ComponentHandle) string {
	if h == nil {
		return UnknownName
	}

	r.mu.RLock()
	if path, ok := r.paths[h.UID]; ok {
		r.mu.RUnlock()
		return path
	}
	r.mu.RUnlock()

	visited := make(map[uint64]struct{})
	var names []string
	circular := false
	for cur := h; cur != nil; cur = cur.Parent {
		if _, seen := visited[cur.UID]; seen {
			circular = true
			break
		}
		visited[cur.UID] = struct{}{}
		names = append(names, r.ResolveName(cur))
	}

	// 收集顺序是叶到根，反转后连接
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	path := strings.Join(names, PathSeparator)
	if circular {
		path += PathSeparator + CircularMarker
	}

	r.mu.Lock()
	r.paths[h.UID] = path
	r.mu.Unlock()
	return path
}

// ResolveMetadata 提取组件元数据快照，类型描述缺失时各字段退化为零值
func (r *Resolver) ResolveMetadata(h *domain.ComponentHandle) domain.ComponentMetadata {
	if h == nil {
		return domain.ComponentMetadata{Name: UnknownName, Path: UnknownName}
	}

	md := domain.ComponentMetadata{
		Name:    r.ResolveName(h),
		Path:    r.ResolvePath(h),
		UID:     h.UID,
		Props:   []string{},
		Emits:   []string{},
		IsSetup: h.SetupState != nil,
	}

	if t := h.Type; t != nil {
		md.File = t.File
		md.Props = sortedKeys(t.Props)
		md.Emits = emitNames(t.Emits)
	}
	if h.Parent != nil {
		md.ParentName = r.ResolveName(h.Parent)
	}
	return md
}

// emitNames 提取声明的事件名，兼容数组式与映射式两种声明
func emitNames(emits any) []string {
	switch v := emits.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		return sortedKeys(v)
	default:
		return []string{}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Forget 驱逐单个实例的缓存条目，组件卸载时调用
func (r *Resolver) Forget(uid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, uid)
	delete(r.paths, uid)
}

// Reset 清空全部缓存
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = make(map[uint64]string)
	r.paths = make(map[uint64]string)
}
