package services

// Condition evaluation for staffing rules. Conditions are free-form JSON
// trees entered by managers, so everything here fails closed: a malformed
// condition simply doesn't match, it never errors.
//
// Supported shapes:
//
//	{"and": [cond, ...]}
//	{"or":  [cond, ...]}
//	{"not": cond}
//	{"field": value}                  implicit equality
//	{"field": {"gte": 2, "lt": 5}}    operator object
//
// Fields in the same flat map are ANDed together.

// EvaluateCondition reports whether condition matches context. It is total
// over any inputs: malformed shapes and type mismatches return false.
func EvaluateCondition(condition map[string]interface{}, context map[string]interface{}) (result bool) {
	// Manager-entered JSON can be arbitrarily malformed; a rule that cannot
	// be evaluated must not match.
	defer func() {
		if r := recover(); r != nil {
			result = false
		}
	}()

	if condition == nil {
		return false
	}

	return evaluateNode(condition, context)
}

func evaluateNode(condition map[string]interface{}, context map[string]interface{}) bool {
	if raw, ok := condition["and"]; ok {
		conds, ok := toConditionList(raw)
		if !ok {
			return false
		}
		for _, c := range conds {
			if !evaluateNode(c, context) {
				return false
			}
		}
		return true
	}

	if raw, ok := condition["or"]; ok {
		conds, ok := toConditionList(raw)
		if !ok {
			return false
		}
		for _, c := range conds {
			if evaluateNode(c, context) {
				return true
			}
		}
		return false
	}

	if raw, ok := condition["not"]; ok {
		inner, ok := raw.(map[string]interface{})
		if !ok {
			return false
		}
		return !evaluateNode(inner, context)
	}

	// Flat field map: every field must pass
	for field, expected := range condition {
		actual := context[field]

		if ops, ok := expected.(map[string]interface{}); ok {
			if !evaluateOperators(actual, ops) {
				return false
			}
			continue
		}

		// Bare value means implicit equality
		if !valuesEqual(actual, expected) {
			return false
		}
	}

	return true
}

func evaluateOperators(actual interface{}, ops map[string]interface{}) bool {
	for op, operand := range ops {
		switch op {
		case "eq":
			if !valuesEqual(actual, operand) {
				return false
			}
		case "ne":
			if valuesEqual(actual, operand) {
				return false
			}
		case "gt", "gte", "lt", "lte":
			a, aok := toFloat(actual)
			b, bok := toFloat(operand)
			if !aok || !bok {
				return false
			}
			switch op {
			case "gt":
				if !(a > b) {
					return false
				}
			case "gte":
				if !(a >= b) {
					return false
				}
			case "lt":
				if !(a < b) {
					return false
				}
			case "lte":
				if !(a <= b) {
					return false
				}
			}
		case "in":
			if !containsValue(operand, actual) {
				return false
			}
		case "nin":
			if containsValue(operand, actual) {
				return false
			}
		default:
			// Unknown operator: fail closed
			return false
		}
	}
	return true
}

func toConditionList(raw interface{}) ([]map[string]interface{}, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	conds := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		cond, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		conds = append(conds, cond)
	}
	return conds, true
}

func containsValue(list interface{}, value interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if valuesEqual(value, item) {
			return true
		}
	}
	return false
}

// valuesEqual compares with numeric coercion so that a JSON-decoded float64
// matches an int placed in the context by Go code
func valuesEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
