package domain

import (
	"math"
	"testing"
	"time"
)

func TestWorker_Capacity(t *testing.T) {
	w := &Worker{ID: "w1", Type: "video_generation", Capacity: 2, Status: WorkerStatusIdle}

	if !w.HasCapacity() {
		t.Fatal("empty worker must have capacity")
	}

	w.Acquire()
	if w.Status != WorkerStatusBusy {
		t.Errorf("expected BUSY, got %s", w.Status)
	}
	if !w.HasCapacity() {
		t.Fatal("worker with load 1/2 must have capacity")
	}

	w.Acquire()
	if w.HasCapacity() {
		t.Fatal("worker with load 2/2 must not have capacity")
	}

	w.Release()
	w.Release()
	if w.Status != WorkerStatusIdle {
		t.Errorf("expected IDLE after full release, got %s", w.Status)
	}
	if w.CurrentLoad != 0 {
		t.Errorf("expected zero load, got %d", w.CurrentLoad)
	}
}

func TestWorker_Release_Offline(t *testing.T) {
	w := &Worker{ID: "w1", Capacity: 1, CurrentLoad: 1, Status: WorkerStatusOffline}
	w.Release()
	// Выведенный из ротации воркер не возвращается в IDLE сам
	if w.Status != WorkerStatusOffline {
		t.Errorf("expected OFFLINE, got %s", w.Status)
	}
}

func TestWorker_LoadFactor(t *testing.T) {
	w := &Worker{Capacity: 4, CurrentLoad: 1}
	if got := w.LoadFactor(); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("expected load factor 0.75, got %f", got)
	}
}

func TestWorker_RecordSuccess_EMA(t *testing.T) {
	w := &Worker{Capacity: 1, PerformanceScore: 0.5}
	now := time.Now()

	w.RecordSuccess(now)
	// 0.9×0.5 + 0.1 = 0.55
	if math.Abs(w.PerformanceScore-0.55) > 1e-9 {
		t.Errorf("expected 0.55, got %f", w.PerformanceScore)
	}
	if !w.LastActivity.Equal(now) {
		t.Error("expected LastActivity to be updated")
	}

	// Серия успехов асимптотически стремится к 1, не превышая её
	for i := 0; i < 200; i++ {
		w.RecordSuccess(now)
	}
	if w.PerformanceScore > 1 {
		t.Errorf("score must stay within [0,1], got %f", w.PerformanceScore)
	}
}

func TestWorker_RecordFailure_EMA(t *testing.T) {
	w := &Worker{Capacity: 1, PerformanceScore: 0.8}
	now := time.Now()

	w.RecordFailure(now)
	// 0.95×0.8 = 0.76
	if math.Abs(w.PerformanceScore-0.76) > 1e-9 {
		t.Errorf("expected 0.76, got %f", w.PerformanceScore)
	}

	for i := 0; i < 500; i++ {
		w.RecordFailure(now)
	}
	if w.PerformanceScore < 0 {
		t.Errorf("score must stay within [0,1], got %f", w.PerformanceScore)
	}
}

func TestWorker_Specializes(t *testing.T) {
	w := &Worker{Specializations: []string{"upload", "render"}}

	if !w.Specializes("upload") {
		t.Error("expected specialization match")
	}
	if w.Specializes("transcribe") {
		t.Error("unexpected specialization match")
	}
	if w.Specializes("") {
		t.Error("empty action must never match")
	}
}
