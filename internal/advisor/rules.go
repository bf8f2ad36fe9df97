// Package advisor 在一份完成的诊断报告上运行建议性检查规则。
// 每条规则都是报告上的无状态纯函数，只读不写。
package advisor

import (
	"fmt"
	"strings"

	"github.com/graph-inspector/internal/report"
)

// Finding 一条建议性结论
type Finding struct {
	Level   string `json:"level"` // info / warning
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Rule 报告 → 结论列表 的纯函数
type Rule func(tree report.Tree) []Finding

var rules = []Rule{
	NoIndexes,
	NoConstraints,
	IndexNotOnline,
	SingleMember,
}

// Advise 对报告运行全部规则
func Advise(tree report.Tree) []Finding {
	var out []Finding
	for _, rule := range rules {
		out = append(out, rule(tree)...)
	}
	return out
}

// NoIndexes 任一成员无索引 → info
func NoIndexes(tree report.Tree) []Finding {
	var out []Finding
	for _, node := range nodes(tree) {
		rows, ok := node["indexes"].([]any)
		if !ok {
			continue
		}
		if len(rows) == 0 {
			out = append(out, Finding{
				Level:   "info",
				Rule:    "no-indexes",
				Message: fmt.Sprintf("member %s: no database indexes defined", nodeID(node)),
			})
		}
	}
	return out
}

// NoConstraints 任一成员无约束 → info
func NoConstraints(tree report.Tree) []Finding {
	var out []Finding
	for _, node := range nodes(tree) {
		rows, ok := node["constraints"].([]any)
		if !ok {
			continue
		}
		if len(rows) == 0 {
			out = append(out, Finding{
				Level:   "info",
				Rule:    "no-constraints",
				Message: fmt.Sprintf("member %s: no constraints defined", nodeID(node)),
			})
		}
	}
	return out
}

// IndexNotOnline 非ONLINE状态的索引 → 每个索引一条warning，指明描述与状态
func IndexNotOnline(tree report.Tree) []Finding {
	var out []Finding
	for _, node := range nodes(tree) {
		rows, ok := node["indexes"].([]any)
		if !ok {
			continue
		}
		for _, raw := range rows {
			row, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			state, _ := row["state"].(string)
			if state == "" || strings.EqualFold(state, "ONLINE") {
				continue
			}
			desc, _ := row["description"].(string)
			out = append(out, Finding{
				Level:   "warning",
				Rule:    "index-not-online",
				Message: fmt.Sprintf("member %s: index %q is in state %s", nodeID(node), desc, state),
			})
		}
	}
	return out
}

// SingleMember 单成员部署 → info（无冗余）
func SingleMember(tree report.Tree) []Finding {
	if clustered, ok := tree["clustered"].(bool); ok && !clustered {
		return []Finding{{
			Level:   "info",
			Rule:    "single-member",
			Message: "deployment has a single member, no redundancy",
		}}
	}
	return nil
}

func nodes(tree report.Tree) []map[string]any {
	raw, ok := tree["nodes"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, n := range raw {
		if m, ok := n.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func nodeID(node map[string]any) string {
	if basics, ok := node["basics"].(map[string]any); ok {
		if id, ok := basics["id"].(string); ok {
			return id
		}
	}
	return "unknown"
}
