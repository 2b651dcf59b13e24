package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func saturdayNightContext() map[string]interface{} {
	return map[string]interface{}{
		"date":        "2024-06-15",
		"day_of_week": "Saturday",
		"shift_type":  "Night Shift",
		"dt_type":     "DT2",
		"num_cooks":   2,
		"forecast":    4250.0,
	}
}

func TestEvaluateCondition_NilCondition(t *testing.T) {
	assert.False(t, EvaluateCondition(nil, saturdayNightContext()))
}

func TestEvaluateCondition_EmptyConditionMatchesEverything(t *testing.T) {
	assert.True(t, EvaluateCondition(map[string]interface{}{}, saturdayNightContext()))
}

func TestEvaluateCondition_ImplicitEquality(t *testing.T) {
	ctx := saturdayNightContext()

	assert.True(t, EvaluateCondition(map[string]interface{}{"day_of_week": "Saturday"}, ctx))
	assert.False(t, EvaluateCondition(map[string]interface{}{"day_of_week": "Sunday"}, ctx))
}

func TestEvaluateCondition_NumericCoercion(t *testing.T) {
	// JSON decoding produces float64; the context holds a Go int
	ctx := saturdayNightContext()

	assert.True(t, EvaluateCondition(map[string]interface{}{"num_cooks": float64(2)}, ctx))
	assert.False(t, EvaluateCondition(map[string]interface{}{"num_cooks": float64(3)}, ctx))
}

func TestEvaluateCondition_FlatFieldsAreANDed(t *testing.T) {
	ctx := saturdayNightContext()

	condition := map[string]interface{}{
		"day_of_week": "Saturday",
		"shift_type":  "Night Shift",
	}
	assert.True(t, EvaluateCondition(condition, ctx))

	condition["shift_type"] = "Day Shift"
	assert.False(t, EvaluateCondition(condition, ctx))
}

func TestEvaluateCondition_ComparisonOperators(t *testing.T) {
	ctx := saturdayNightContext()

	tests := []struct {
		name      string
		condition map[string]interface{}
		want      bool
	}{
		{"gte match", map[string]interface{}{"forecast": map[string]interface{}{"gte": 4000.0}}, true},
		{"gte boundary", map[string]interface{}{"forecast": map[string]interface{}{"gte": 4250.0}}, true},
		{"gt boundary", map[string]interface{}{"forecast": map[string]interface{}{"gt": 4250.0}}, false},
		{"lt miss", map[string]interface{}{"forecast": map[string]interface{}{"lt": 4000.0}}, false},
		{"lte match", map[string]interface{}{"num_cooks": map[string]interface{}{"lte": 2.0}}, true},
		{"range match", map[string]interface{}{"forecast": map[string]interface{}{"gte": 4000.0, "lt": 5000.0}}, true},
		{"range miss", map[string]interface{}{"forecast": map[string]interface{}{"gte": 4000.0, "lt": 4100.0}}, false},
		{"ne match", map[string]interface{}{"dt_type": map[string]interface{}{"ne": "DT1"}}, true},
		{"eq match", map[string]interface{}{"dt_type": map[string]interface{}{"eq": "DT2"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(tt.condition, ctx))
		})
	}
}

func TestEvaluateCondition_InAndNin(t *testing.T) {
	ctx := saturdayNightContext()

	weekend := map[string]interface{}{
		"day_of_week": map[string]interface{}{"in": []interface{}{"Saturday", "Sunday"}},
	}
	assert.True(t, EvaluateCondition(weekend, ctx))

	weekday := map[string]interface{}{
		"day_of_week": map[string]interface{}{"nin": []interface{}{"Saturday", "Sunday"}},
	}
	assert.False(t, EvaluateCondition(weekday, ctx))
}

func TestEvaluateCondition_BooleanCombinators(t *testing.T) {
	ctx := saturdayNightContext()

	and := map[string]interface{}{
		"and": []interface{}{
			map[string]interface{}{"day_of_week": "Saturday"},
			map[string]interface{}{"forecast": map[string]interface{}{"gt": 4000.0}},
		},
	}
	assert.True(t, EvaluateCondition(and, ctx))

	or := map[string]interface{}{
		"or": []interface{}{
			map[string]interface{}{"day_of_week": "Monday"},
			map[string]interface{}{"shift_type": "Night Shift"},
		},
	}
	assert.True(t, EvaluateCondition(or, ctx))

	not := map[string]interface{}{
		"not": map[string]interface{}{"dt_type": "DT1"},
	}
	assert.True(t, EvaluateCondition(not, ctx))

	nested := map[string]interface{}{
		"and": []interface{}{
			map[string]interface{}{"or": []interface{}{
				map[string]interface{}{"day_of_week": "Friday"},
				map[string]interface{}{"day_of_week": "Saturday"},
			}},
			map[string]interface{}{"not": map[string]interface{}{"shift_type": "Day Shift"}},
		},
	}
	assert.True(t, EvaluateCondition(nested, ctx))
}

func TestEvaluateCondition_MalformedShapesFailClosed(t *testing.T) {
	ctx := saturdayNightContext()

	tests := []struct {
		name      string
		condition map[string]interface{}
	}{
		{"and not a list", map[string]interface{}{"and": "Saturday"}},
		{"and with non-map entry", map[string]interface{}{"and": []interface{}{"Saturday"}}},
		{"not with non-map operand", map[string]interface{}{"not": "Saturday"}},
		{"unknown operator", map[string]interface{}{"forecast": map[string]interface{}{"between": []interface{}{1.0, 2.0}}}},
		{"comparison on string field", map[string]interface{}{"day_of_week": map[string]interface{}{"gt": 5.0}}},
		{"comparison with string operand", map[string]interface{}{"forecast": map[string]interface{}{"gt": "lots"}}},
		{"in on non-list operand", map[string]interface{}{"day_of_week": map[string]interface{}{"in": "Saturday"}}},
		{"missing context field equality", map[string]interface{}{"no_such_field": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, EvaluateCondition(tt.condition, ctx))
		})
	}
}

func TestEvaluateCondition_TypeMismatchEquality(t *testing.T) {
	ctx := saturdayNightContext()

	// Number against string never matches
	assert.False(t, EvaluateCondition(map[string]interface{}{"day_of_week": 6.0}, ctx))
	assert.False(t, EvaluateCondition(map[string]interface{}{"num_cooks": "2"}, ctx))
}
