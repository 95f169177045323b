package config

import (
	"fmt"
	"math"
)

// Parameters holds the free-form table attached to a stage. Values are the
// scalars, arrays and tables produced by the toml and yaml decoders.
type Parameters map[string]any

func (p Parameters) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Parameters) Float(key string) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadConfig, key)
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be a number, got %T", ErrBadConfig, key, raw)
	}
	return v, nil
}

func (p Parameters) FloatOr(key string, fallback float64) (float64, error) {
	if !p.Has(key) {
		return fallback, nil
	}
	return p.Float(key)
}

func (p Parameters) Int(key string) (int, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrBadConfig, key)
	}
	v, ok := toInt(raw)
	if !ok {
		return 0, fmt.Errorf("%w: %q must be an integer, got %v", ErrBadConfig, key, raw)
	}
	return v, nil
}

func (p Parameters) IntOr(key string, fallback int) (int, error) {
	if !p.Has(key) {
		return fallback, nil
	}
	return p.Int(key)
}

func (p Parameters) StringOr(key, fallback string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrBadConfig, key, raw)
	}
	return s, nil
}

func (p Parameters) BoolOr(key string, fallback bool) (bool, error) {
	raw, ok := p[key]
	if !ok {
		return fallback, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q must be a boolean, got %T", ErrBadConfig, key, raw)
	}
	return b, nil
}

// Floats reads a numeric array. A positive length requires exactly that many
// elements.
func (p Parameters) Floats(key string, length int) ([]float64, error) {
	raw, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadConfig, key)
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an array, got %T", ErrBadConfig, key, raw)
	}
	if length > 0 && len(list) != length {
		return nil, fmt.Errorf("%w: %q must have %d elements, got %d", ErrBadConfig, key, length, len(list))
	}

	result := make([]float64, 0, len(list))
	for _, item := range list {
		v, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%w: %q must contain numbers, got %T", ErrBadConfig, key, item)
		}
		result = append(result, v)
	}
	return result, nil
}

// Corners reads the four corner values of a subdivision generator, given
// either as one number for all corners or as [ne, nw, se, sw]. An absent key
// yields zeros.
func (p Parameters) Corners(key string) ([4]float64, error) {
	var corners [4]float64
	raw, ok := p[key]
	if !ok {
		return corners, nil
	}
	if v, ok := toFloat(raw); ok {
		return [4]float64{v, v, v, v}, nil
	}

	values, err := p.Floats(key, 4)
	if err != nil {
		return corners, err
	}
	copy(corners[:], values)
	return corners, nil
}

// Table returns a nested table, or an empty one when key is absent.
func (p Parameters) Table(key string) (Parameters, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return Parameters{}, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a table, got %T", ErrBadConfig, key, raw)
	}
	return Parameters(table), nil
}

// Stages decodes a nested array of stages, as carried by the intercept
// modifier.
func (p Parameters) Stages(key string) ([]Stage, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		// toml decodes arrays of tables into typed slices
		if maps, isMaps := raw.([]map[string]interface{}); isMaps {
			list = make([]interface{}, len(maps))
			for i, m := range maps {
				list[i] = m
			}
		} else {
			return nil, fmt.Errorf("%w: %q must be an array of tables, got %T", ErrBadConfig, key, raw)
		}
	}

	stages := make([]Stage, 0, len(list))
	for i, item := range list {
		s, err := stageFrom(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		stages = append(stages, *s)
	}
	return stages, nil
}

// Stage decodes a single nested stage; a missing key yields nil.
func (p Parameters) Stage(key string) (*Stage, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, err := stageFrom(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

func stageFrom(raw any) (*Stage, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: stage must be a table, got %T", ErrBadConfig, raw)
	}
	p := Parameters(table)

	name, err := p.StringOr("name", "")
	if err != nil {
		return nil, err
	}
	params, err := p.Table("parameters")
	if err != nil {
		return nil, err
	}
	s := &Stage{Name: name, Parameters: params}

	if p.Has("output") {
		out, err := p.Table("output")
		if err != nil {
			return nil, err
		}
		s.Output = &Output{}
		if s.Output.Filename, err = out.StringOr("filename", ""); err != nil {
			return nil, err
		}
		if s.Output.Type, err = out.StringOr("type", ""); err != nil {
			return nil, err
		}
		if s.Output.Parameters, err = out.Table("parameters"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case uint64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
