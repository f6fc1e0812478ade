package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError 规则校验错误，Index 为出错规则的下标
type ValidationError struct {
	Kind  RuleKind
	Index int
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rule #%d: %s", e.Kind, e.Index+1, e.Msg)
}

func invalid(kind RuleKind, i int, format string, args ...any) error {
	return &ValidationError{Kind: kind, Index: i, Msg: fmt.Sprintf(format, args...)}
}

// Validate 校验指定类别的规则
func (r RuleSet) Validate(kind RuleKind) error {
	switch kind {
	case RuleKindStandard:
		for i, rule := range r.Standard {
			if strings.TrimSpace(rule.Destination) == "" {
				return invalid(kind, i, "destination is required")
			}
			if rule.PriceUnder05 < 0 || rule.Price05To1 < 0 || rule.PriceStep < 0 {
				return invalid(kind, i, "prices must not be negative")
			}
		}
	case RuleKindContract:
		for i, rule := range r.Contract {
			if strings.TrimSpace(rule.Destination) == "" {
				return invalid(kind, i, "destination is required")
			}
			if rule.FirstWeight < 0 || rule.FirstPrice < 0 || rule.StepWeight < 0 || rule.StepPrice < 0 {
				return invalid(kind, i, "weights and prices must not be negative")
			}
		}
	case RuleKindPackaging:
		for i, e := range r.Packaging {
			if strings.TrimSpace(e.MaterialName) == "" {
				return invalid(kind, i, "material name is required")
			}
			if e.UnitPrice < 0 {
				return invalid(kind, i, "unit price must not be negative")
			}
		}
	case RuleKindInsurance:
		for i, rule := range r.Insurance {
			if rule.Rate < 0 || rule.MinFee < 0 {
				return invalid(kind, i, "rate and minimum fee must not be negative")
			}
			if rule.Rate == 0 && rule.MinFee == 0 {
				return invalid(kind, i, "rate or minimum fee is required")
			}
		}
	default:
		return fmt.Errorf("unknown rule kind: %q", kind)
	}
	return nil
}

// DecodeRules 将 JSON 数组解码为指定类别的规则
func DecodeRules(kind RuleKind, data []byte) (RuleSet, error) {
	var (
		rs  RuleSet
		err error
	)
	switch kind {
	case RuleKindStandard:
		err = json.Unmarshal(data, &rs.Standard)
	case RuleKindContract:
		err = json.Unmarshal(data, &rs.Contract)
	case RuleKindPackaging:
		err = json.Unmarshal(data, &rs.Packaging)
	case RuleKindInsurance:
		err = json.Unmarshal(data, &rs.Insurance)
	default:
		return rs, fmt.Errorf("unknown rule kind: %q", kind)
	}
	if err != nil {
		return rs, fmt.Errorf("decode %s rules: %w", kind, err)
	}
	return rs, nil
}

// EncodeRules 将指定类别的规则编码为 JSON 数组
func EncodeRules(kind RuleKind, rs RuleSet) ([]byte, error) {
	var v any
	switch kind {
	case RuleKindStandard:
		v = nonNil(rs.Standard)
	case RuleKindContract:
		v = nonNil(rs.Contract)
	case RuleKindPackaging:
		v = nonNil(rs.Packaging)
	case RuleKindInsurance:
		v = nonNil(rs.Insurance)
	default:
		return nil, fmt.Errorf("unknown rule kind: %q", kind)
	}
	return json.Marshal(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
