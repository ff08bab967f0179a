package server

import "testing"

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expected := map[string]bool{
		"inhibit_simulate_file":  false,
		"inhibit_simulate_batch": false,
		"inhibit_match_arrows":   false,
		"inhibit_geometry":       false,
	}

	for _, tool := range tools {
		if _, ok := expected[tool.Name]; !ok {
			t.Errorf("Unexpected tool: %s", tool.Name)
			continue
		}
		expected[tool.Name] = true

		if tool.Description == "" {
			t.Errorf("Tool %s has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("Tool %s schema type = %v, want object", tool.Name, tool.InputSchema["type"])
		}
		if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
			t.Errorf("Tool %s has no properties", tool.Name)
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("Missing tool: %s", name)
		}
	}
}

func TestGetToolDefinitions_RequiredFieldsExist(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		required, ok := tool.InputSchema["required"].([]string)
		if !ok {
			continue
		}
		props := tool.InputSchema["properties"].(map[string]interface{})
		for _, name := range required {
			if _, ok := props[name]; !ok {
				t.Errorf("Tool %s requires undeclared property %s", tool.Name, name)
			}
		}
	}
}
