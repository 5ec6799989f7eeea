package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt is an integer that tolerates the loosely-typed numeric values
// found in older persisted records: JSON numbers, numeric strings, null,
// and garbage all decode without failing the surrounding record. Anything
// that cannot be read as a number decodes to zero.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the value as a plain int
func (f FlexInt) Int() int {
	return int(f)
}
