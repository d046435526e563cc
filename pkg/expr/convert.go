package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// toCtyVariables converts the output mapping to the evaluation namespace.
// Keys that are not valid identifiers stay unreachable from expressions.
func toCtyVariables(vars map[string]any) map[string]cty.Value {
	out := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		out[k] = toCtyValue(v)
	}
	return out
}

func toCtyValue(v any) cty.Value {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		return val
	case string:
		return cty.StringVal(val)
	case bool:
		return cty.BoolVal(val)
	case int:
		return cty.NumberIntVal(int64(val))
	case int8:
		return cty.NumberIntVal(int64(val))
	case int16:
		return cty.NumberIntVal(int64(val))
	case int32:
		return cty.NumberIntVal(int64(val))
	case int64:
		return cty.NumberIntVal(val)
	case uint:
		return cty.NumberUIntVal(uint64(val))
	case uint8:
		return cty.NumberUIntVal(uint64(val))
	case uint16:
		return cty.NumberUIntVal(uint64(val))
	case uint32:
		return cty.NumberUIntVal(uint64(val))
	case uint64:
		return cty.NumberUIntVal(val)
	case float32:
		return toCtyValue(float64(val))
	case float64:
		if math.IsNaN(val) {
			return cty.NullVal(cty.Number)
		}
		return cty.NumberFloatVal(val)
	case json.Number:
		if f, ok := new(big.Float).SetString(val.String()); ok {
			return cty.NumberVal(f)
		}
		return cty.StringVal(val.String())
	case map[string]any:
		if len(val) == 0 {
			return cty.EmptyObjectVal
		}
		return cty.ObjectVal(toCtyVariables(val))
	case []any:
		if len(val) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(val))
		for i, item := range val {
			vals[i] = toCtyValue(item)
		}
		return cty.TupleVal(vals)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			vals[i] = toCtyValue(rv.Index(i).Interface())
		}
		return cty.TupleVal(vals)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.Len() == 0 {
			return cty.EmptyObjectVal
		}
		vals := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			vals[iter.Key().String()] = toCtyValue(iter.Value().Interface())
		}
		return cty.ObjectVal(vals)
	}

	return cty.StringVal(fmt.Sprintf("%v", v))
}
