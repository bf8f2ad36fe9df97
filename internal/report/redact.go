package report

// Mask 敏感字段统一替换值
const Mask = "**REDACTED**"

// sensitiveFields 需要脱敏的字段名（精确匹配，任意深度）
var sensitiveFields = map[string]bool{
	"password": true,
}

// Redact 纯函数脱敏：深度优先重建整棵树，任意嵌套map与数组元素中
// 命中敏感键的值一律替换为Mask。输入树不被修改；幂等。
func Redact(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	return redactValue(tree).(map[string]any)
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if sensitiveFields[k] {
				out[k] = Mask
				continue
			}
			out[k] = redactValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = redactValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = redactValue(e)
		}
		return out
	default:
		return v
	}
}
