package cmd

import (
	"testing"
	"time"

	"academic-records/internal/config"
)

func TestErrorCode(t *testing.T) {
	cases := map[string]string{
		"ERRO:CAPACITY_EXCEEDED:students holds 10 records": "CAPACITY_EXCEEDED",
		"ERRO:FORBIDDEN": "FORBIDDEN",
		"garbage":        "unexpected_reply",
		"OK":             "unexpected_reply",
	}
	for reply, want := range cases {
		if got := errorCode(reply); got != want {
			t.Errorf("errorCode(%q): expected %s, got %s", reply, want, got)
		}
	}
}

func TestRecordResponse_Classifies(t *testing.T) {
	lt := NewLoadTester(LoadTestConfig{})

	lt.recordResponse("OK:Aluno cadastrado com sucesso", 4*time.Millisecond, false)
	lt.recordResponse("OK:Aluno cadastrado com sucesso", 2*time.Millisecond, true)
	lt.recordResponse("ERRO:DUPLICATE_KEY:students 5000 already exists", 6*time.Millisecond, true)
	lt.recordResponse("ERRO:STORAGE_UNAVAILABLE:disk full", 8*time.Millisecond, false)

	r := lt.results
	if r.TotalRequests != 4 {
		t.Errorf("Expected 4 requests, got %d", r.TotalRequests)
	}
	if r.SuccessfulReqs != 2 || r.SharedSuccesses != 1 {
		t.Errorf("Expected 2 successes with 1 shared, got %d and %d", r.SuccessfulReqs, r.SharedSuccesses)
	}
	if r.DuplicateReqs != 1 {
		t.Errorf("Expected 1 duplicate, got %d", r.DuplicateReqs)
	}
	if r.FailedReqs != 1 || r.ErrorsByType["STORAGE_UNAVAILABLE"] != 1 {
		t.Errorf("Expected 1 STORAGE_UNAVAILABLE failure, got %d %v", r.FailedReqs, r.ErrorsByType)
	}
	if r.MinResponseTimeMs != 2 || r.MaxResponseTimeMs != 8 {
		t.Errorf("Expected min 2ms and max 8ms, got %d and %d", r.MinResponseTimeMs, r.MaxResponseTimeMs)
	}
	if r.AvgResponseTimeMs != 5 {
		t.Errorf("Expected average 5ms, got %v", r.AvgResponseTimeMs)
	}
}

func TestPercent(t *testing.T) {
	if got := percent(1, 4); got != 25 {
		t.Errorf("Expected 25, got %v", got)
	}
	if got := percent(3, 0); got != 0 {
		t.Errorf("Expected 0 for empty total, got %v", got)
	}
}

func TestListLimit_LargestCapacity(t *testing.T) {
	app := &application{cfg: &config.Config{Storage: config.StorageConfig{
		Students: config.EntityStorageConfig{Capacity: 1000},
		Lessons:  config.EntityStorageConfig{Capacity: 5000},
		Users:    config.EntityStorageConfig{Capacity: 500},
	}}}
	if got := app.listLimit(); got != 5000 {
		t.Errorf("Expected 5000, got %d", got)
	}
}
