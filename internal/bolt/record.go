package bolt

import "strconv"

// Record 单行查询结果转换后的普通键值记录
type Record = map[string]any

// maxSafeInteger 报告消费方的安全整数上限（2^53-1）
// 超出该范围的整数一律以十进制字符串表示，保证大计数/大id不丢精度
const maxSafeInteger = int64(1)<<53 - 1

// ConvertValue 统一转换查询结果值：
// 超出安全范围的整数转十进制字符串，其余原样保留；map/列表递归处理
func ConvertValue(v any) any {
	switch val := v.(type) {
	case int64:
		if val > maxSafeInteger || val < -maxSafeInteger {
			return strconv.FormatInt(val, 10)
		}
		return val
	case uint64:
		if val > uint64(maxSafeInteger) {
			return strconv.FormatUint(val, 10)
		}
		return int64(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = ConvertValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = ConvertValue(e)
		}
		return out
	default:
		return v
	}
}
