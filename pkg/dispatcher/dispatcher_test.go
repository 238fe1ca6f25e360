package dispatcher

import (
	"encoding/json"
	"testing"
)

func TestTaskRequest_Unmarshal(t *testing.T) {
	raw := `{"skill_name":"get_product_info","arguments":{"product_name":"iPhone 15 Pro"},"request_id":"r1"}`
	var req TaskRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if req.SkillName != "get_product_info" {
		t.Errorf("expected skill get_product_info, got %s", req.SkillName)
	}
	if req.RequestID != "r1" {
		t.Errorf("expected request_id r1, got %s", req.RequestID)
	}
	if req.Arguments["product_name"] != "iPhone 15 Pro" {
		t.Errorf("expected product_name argument, got %v", req.Arguments)
	}
}

func TestTaskResult_MarshalSuccess(t *testing.T) {
	data, err := json.Marshal(SuccessResult("r1", map[string]interface{}{"name": "iPhone 15 Pro"}))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if decoded["status"] != "success" {
		t.Errorf("expected status=success, got %v", decoded["status"])
	}
	if _, ok := decoded["error"]; ok {
		t.Error("expected no error field on success")
	}
}

func TestTaskResult_MarshalFailure(t *testing.T) {
	data, err := json.Marshal(FailureResult("r2", KindUnknownSkill, "Unknown skill: x", false))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	var decoded TaskResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if decoded.Succeeded() {
		t.Error("expected failure status")
	}
	if decoded.Kind() != KindUnknownSkill {
		t.Errorf("expected UNKNOWN_SKILL, got %s", decoded.Kind())
	}
}

func TestTaskResult_NilHelpers(t *testing.T) {
	var r *TaskResult
	if r.Succeeded() {
		t.Error("nil result must not report success")
	}
	if r.Kind() != "" {
		t.Errorf("nil result Kind = %q, want empty", r.Kind())
	}
}
