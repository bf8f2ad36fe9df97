// Package report 定义诊断子树结构、合并与脱敏。
package report

// Tree 任意嵌套的诊断子树（字符串键 → 任意值）
type Tree = map[string]any

// Merge 按递归键并集合并多棵子树，后者在键冲突时覆盖前者。
// 结果是新构建的树，不与输入共享可变map。
func Merge(trees ...Tree) Tree {
	out := Tree{}
	for _, t := range trees {
		mergeInto(out, t)
	}
	return out
}

func mergeInto(dst, src Tree) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeInto(dv, sv)
				continue
			}
			clone := Tree{}
			mergeInto(clone, sv)
			dst[k] = clone
			continue
		}
		dst[k] = v
	}
}
