package outcomes

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Field names accepted in an input document.
const (
	FieldObj1Treated = "obj1_treated"
	FieldObj1Control = "obj1_control"
	FieldObj2Treated = "obj2_treated"
	FieldObj2Control = "obj2_control"
)

// LoadFile reads a JSON document from path. See Parse for the format.
func LoadFile(path string) (*PotentialOutcomes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read potential outcomes: %w", err)
	}
	po, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return po, nil
}

// Parse decodes a JSON object with four numeric arrays named obj1_treated,
// obj1_control, obj2_treated and obj2_control. The result is shape-checked
// and finite-checked before it is returned.
func Parse(data []byte) (*PotentialOutcomes, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedInput)
	}
	doc := gjson.ParseBytes(data)

	po := &PotentialOutcomes{}
	targets := []struct {
		field string
		dst   *[]float64
	}{
		{FieldObj1Treated, &po.Obj1Treated},
		{FieldObj1Control, &po.Obj1Control},
		{FieldObj2Treated, &po.Obj2Treated},
		{FieldObj2Control, &po.Obj2Control},
	}
	for _, t := range targets {
		values, err := readFloats(doc, t.field)
		if err != nil {
			return nil, err
		}
		*t.dst = values
	}

	if err := po.Validate(); err != nil {
		return nil, err
	}
	if err := po.CheckFinite(); err != nil {
		return nil, err
	}
	return po, nil
}

func readFloats(doc gjson.Result, field string) ([]float64, error) {
	arr := doc.Get(field)
	if !arr.Exists() {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedInput, field)
	}
	if !arr.IsArray() {
		return nil, fmt.Errorf("%w: field %q must be an array, got %s", ErrMalformedInput, field, arr.Type)
	}

	var (
		values []float64
		bad    error
	)
	arr.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.Number {
			bad = fmt.Errorf("%w: %s[%d]: expected a number, got %s", ErrMalformedInput, field, len(values), v.Type)
			return false
		}
		values = append(values, v.Float())
		return true
	})
	if bad != nil {
		return nil, bad
	}
	if values == nil {
		values = []float64{}
	}
	return values, nil
}
