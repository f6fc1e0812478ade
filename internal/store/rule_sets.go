package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"billcheck/internal/model"
)

// RuleSetMeta 规则集元信息
type RuleSetMeta struct {
	Kind      model.RuleKind `json:"kind"`
	Count     int            `json:"count"`
	Source    string         `json:"source"` // 导入文件名或 api
	UpdatedAt time.Time      `json:"updatedAt"`
}

// SaveRules 保存某一类规则（整体替换）；source 记录来源
func (s *Store) SaveRules(kind model.RuleKind, rules model.RuleSet, source string) error {
	if !model.ValidRuleKind(kind) {
		return fmt.Errorf("unknown rule kind: %q", kind)
	}

	payload, err := model.EncodeRules(kind, rules)
	if err != nil {
		return fmt.Errorf("encode %s rules: %w", kind, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO rule_sets (kind, payload, source, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			payload = excluded.payload,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, string(kind), string(payload), source, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save %s rules: %w", kind, err)
	}
	return nil
}

// LoadRuleSet 以 base 为底，用已保存的各类规则覆盖，返回新规则集
func (s *Store) LoadRuleSet(base model.RuleSet) (model.RuleSet, error) {
	out := base.Clone()

	rows, err := s.db.Query("SELECT kind, payload FROM rule_sets")
	if err != nil {
		return out, fmt.Errorf("query rule sets failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, payload string
		if err := rows.Scan(&kind, &payload); err != nil {
			return out, fmt.Errorf("scan rule set failed: %w", err)
		}
		if !model.ValidRuleKind(model.RuleKind(kind)) {
			continue
		}
		rs, err := model.DecodeRules(model.RuleKind(kind), []byte(payload))
		if err != nil {
			return out, err
		}
		out.Replace(model.RuleKind(kind), rs)
	}
	return out, rows.Err()
}

// ListRuleSetMeta 已保存规则的元信息
func (s *Store) ListRuleSetMeta() ([]RuleSetMeta, error) {
	rows, err := s.db.Query("SELECT kind, payload, source, updated_at FROM rule_sets ORDER BY kind")
	if err != nil {
		return nil, fmt.Errorf("query rule sets failed: %w", err)
	}
	defer rows.Close()

	out := []RuleSetMeta{}
	for rows.Next() {
		var (
			m       RuleSetMeta
			kind    string
			payload string
		)
		if err := rows.Scan(&kind, &payload, &m.Source, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rule set failed: %w", err)
		}
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return nil, fmt.Errorf("decode %s rules: %w", kind, err)
		}
		m.Kind = model.RuleKind(kind)
		m.Count = len(items)
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteRules 删除某一类已保存规则，回退到内置默认
func (s *Store) DeleteRules(kind model.RuleKind) error {
	_, err := s.db.Exec("DELETE FROM rule_sets WHERE kind = ?", string(kind))
	return err
}

// ResetRules 清空全部已保存规则
func (s *Store) ResetRules() error {
	_, err := s.db.Exec("DELETE FROM rule_sets")
	return err
}

// HasRules 某类规则是否已保存
func (s *Store) HasRules(kind model.RuleKind) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM rule_sets WHERE kind = ?", string(kind)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
