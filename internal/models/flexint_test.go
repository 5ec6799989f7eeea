package models

import (
	"encoding/json"
	"testing"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "number", input: `42`, expected: 42},
		{name: "numeric string", input: `"15"`, expected: 15},
		{name: "float truncates", input: `9.7`, expected: 9},
		{name: "null is zero", input: `null`, expected: 0},
		{name: "garbage string is zero", input: `"lots"`, expected: 0},
		{name: "empty string is zero", input: `""`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v FlexInt
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if v.Int() != tt.expected {
				t.Errorf("FlexInt = %d, want %d", v.Int(), tt.expected)
			}
		})
	}
}

func TestFlexIntMarshal(t *testing.T) {
	data, err := json.Marshal(FlexInt(7))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "7" {
		t.Errorf("marshal = %s, want 7", data)
	}
}
