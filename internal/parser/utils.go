package parser

import (
	"regexp"
	"sort"
	"strings"

	"billcheck/internal/model"
)

var reHeaderNoise = regexp.MustCompile(`[\s()（）\[\]]+`)

// NormalizeHeaderKey 规范化列名：去除空白与括号，转大写
func NormalizeHeaderKey(name string) string {
	return strings.ToUpper(reHeaderNoise.ReplaceAllString(name, ""))
}

// NormalizeColumnName 规范化表头单元格，去除换行、制表符与多余空白
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	return name
}

// ContainsAny 检查字符串是否包含任意一个关键词；空关键词不参与匹配
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// orderedKeys 返回行的列名顺序；未记录表头顺序时按字典序
func orderedKeys(row model.BillRow) []string {
	if len(row.Columns) > 0 {
		return row.Columns
	}
	keys := make([]string, 0, len(row.Fields))
	for k := range row.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
