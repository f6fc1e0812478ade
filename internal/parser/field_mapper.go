package parser

import (
	"strings"

	"billcheck/internal/model"
)

// FieldMapper 字段映射器：按别名表从异构账单行中取值
type FieldMapper struct {
	aliases AliasTable
}

// NewFieldMapper 创建字段映射器；aliases 为空时使用内置别名表
func NewFieldMapper(aliases AliasTable) *FieldMapper {
	if len(aliases) == 0 {
		aliases = DefaultAliases()
	}
	return &FieldMapper{aliases: aliases}
}

// Aliases 返回字段的别名列表
func (m *FieldMapper) Aliases(field Field) []string {
	return m.aliases[field]
}

// Get 读取逻辑字段的值（已去首尾空白）
func (m *FieldMapper) Get(row model.BillRow, field Field) string {
	v, _ := Lookup(row, m.aliases[field])
	return strings.TrimSpace(v)
}

// Lookup 按别名顺序解析字段值，返回第一个非空值：
//  1. 精确列名
//  2. 规范化后（去空白、括号，转大写）精确相等
//  3. 规范化后双向包含
//
// 2、3 两步按表头顺序扫描列，保证结果确定。
func Lookup(row model.BillRow, aliases []string) (string, bool) {
	if len(row.Fields) == 0 || len(aliases) == 0 {
		return "", false
	}

	for _, alias := range aliases {
		if v, ok := row.Fields[alias]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}

	keys := orderedKeys(row)
	normKeys := make([]string, len(keys))
	for i, k := range keys {
		normKeys[i] = NormalizeHeaderKey(k)
	}
	normAliases := make([]string, len(aliases))
	for i, a := range aliases {
		normAliases[i] = NormalizeHeaderKey(a)
	}

	for _, na := range normAliases {
		for i, k := range keys {
			if normKeys[i] == na && strings.TrimSpace(row.Fields[k]) != "" {
				return row.Fields[k], true
			}
		}
	}

	for _, na := range normAliases {
		if na == "" {
			continue
		}
		for i, k := range keys {
			nk := normKeys[i]
			if nk == "" {
				continue
			}
			if (strings.Contains(nk, na) || strings.Contains(na, nk)) && strings.TrimSpace(row.Fields[k]) != "" {
				return row.Fields[k], true
			}
		}
	}

	return "", false
}
