package v1alpha1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const taskStatusSchemaURL = "mem://docbase/task_status.json"

var (
	compileOnce      sync.Once
	taskStatusSchema *jsonschema.Schema
	compileErr       error
)

// TaskStatusJSONSchema returns the schema every status body must match
// before it is decoded into a TaskStatus.
func TaskStatusJSONSchema() map[string]any {
	msg := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"attributes": map[string]any{
				"type":  []string{"array", "null"},
				"items": map[string]any{"type": "string"},
			},
			"nuggets": map[string]any{
				"type": []string{"array", "null"},
				// items are checked one by one, see NuggetDescriptor.UnmarshalJSON
				"items": map[string]any{},
			},
		},
	}

	return map[string]any{
		"type":     "object",
		"required": []string{"state"},
		"properties": map[string]any{
			"state": map[string]any{"type": "string"},
			"meta": map[string]any{
				"type": []string{"object", "null"},
				"properties": map[string]any{
					"status": map[string]any{"type": []string{"string", "null"}},
					"document_base_to_ui": map[string]any{
						"type":     []string{"object", "null"},
						"required": []string{"msg"},
						"properties": map[string]any{
							"msg": msg,
						},
					},
				},
			},
		},
	}
}

func compiledTaskStatusSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(TaskStatusJSONSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(taskStatusSchemaURL, bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		taskStatusSchema, compileErr = compiler.Compile(taskStatusSchemaURL)
	})
	return taskStatusSchema, compileErr
}

// DecodeTaskStatus validates data against the status schema and decodes it.
func DecodeTaskStatus(data []byte) (*TaskStatus, error) {
	schema, err := compiledTaskStatusSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("status does not match schema: %w", err)
	}

	var status TaskStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}
