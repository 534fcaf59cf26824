package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestOutput_Print_Table(t *testing.T) {
	var data, msg bytes.Buffer
	out := &Output{data: &data, msg: &msg}

	out.Print(
		[]string{"SERVICE", "USAGE"},
		[][]string{{"youtube", "42"}, {"tiktok", "7"}},
		nil,
	)

	lines := strings.Split(strings.TrimSpace(data.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, underline and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "SERVICE") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[2], "youtube") || !strings.Contains(lines[3], "tiktok") {
		t.Errorf("rows out of order: %v", lines[2:])
	}
}

func TestOutput_Print_JSON(t *testing.T) {
	var data, msg bytes.Buffer
	out := &Output{asJSON: true, data: &data, msg: &msg}

	records := []map[string]any{{"service": "youtube", "usage": 42}}
	out.Print([]string{"SERVICE"}, [][]string{{"youtube"}}, records)

	var decoded []map[string]any
	if err := json.Unmarshal(data.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["service"] != "youtube" {
		t.Errorf("unexpected JSON payload: %v", decoded)
	}
}

func TestOutput_Print_Empty(t *testing.T) {
	var data, msg bytes.Buffer
	out := &Output{data: &data, msg: &msg}

	out.Print([]string{"SERVICE"}, nil, nil)

	// Пустая выборка: подсказка в stderr, stdout чистый для pipe'ов
	if data.Len() != 0 {
		t.Errorf("empty result must not write to stdout: %q", data.String())
	}
	if !strings.Contains(msg.String(), "no records") {
		t.Errorf("expected empty-result notice, got %q", msg.String())
	}
}

func TestOutput_Success(t *testing.T) {
	var data, msg bytes.Buffer
	out := &Output{data: &data, msg: &msg}

	out.Success("batch submitted")

	if data.Len() != 0 {
		t.Error("messages must go to stderr, not stdout")
	}
	if !strings.Contains(msg.String(), "batch submitted") {
		t.Errorf("unexpected message: %q", msg.String())
	}
}
