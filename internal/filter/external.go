package filter

import (
	"regexp"
	"strings"

	"flowvis/pkg/domain"
)

// externalRoots 已知的第三方/临时产物路径片段
var externalRoots = []string{
	"/.pnpm/",
	"/.yarn/",
	"/bower_components/",
	"/jspm_packages/",
	"/.cache/",
	"/tmp/.vite/",
}

// distSegmentRe 构建产物目录段
var distSegmentRe = regexp.MustCompile(`(^|/)(dist|build|lib|es|umd)(/|$)`)

// packedLibRe 形如 <name>/dist/ 或 <name>/lib/ 的打包库目录段
var packedLibRe = regexp.MustCompile(`[^/]+/(dist|lib)/`)

// IsExternal 启发式判定句柄是否属于第三方/依赖库组件
// 各信号无优先级，任一命中即判定为外部；只用于降噪，不保证精确
func IsExternal(h *domain.ComponentHandle) bool {
	if h.Type == nil || h.Type.File == "" {
		return true
	}
	file := normalizePath(h.Type.File)

	if strings.Contains(file, "node_modules") {
		return true
	}
	for _, root := range externalRoots {
		if strings.Contains(file, root) {
			return true
		}
	}
	if distSegmentRe.MatchString(file) && hasSecondaryIndicator(file) {
		return true
	}
	if isAbsolute(file) &&
		!strings.Contains(file, "src/") &&
		!strings.Contains(file, "components/") {
		return true
	}
	return false
}

// hasSecondaryIndicator 构建产物目录之外的第二外部信号
func hasSecondaryIndicator(file string) bool {
	if strings.Contains(file, "packages/") {
		return true
	}
	if strings.Count(file, "node_modules") > 1 {
		return true
	}
	return packedLibRe.MatchString(file)
}

// normalizePath 统一路径分隔符并去掉一个尾部斜杠
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimSuffix(p, "/")
}

// isAbsolute 兼容 Windows 盘符的绝对路径判断
func isAbsolute(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	return len(p) > 2 && p[1] == ':' && p[2] == '/'
}
