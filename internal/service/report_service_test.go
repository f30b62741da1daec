package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"academic-records/internal/domain/academic"
)

func TestReportService_GenerateClassReport(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	records := NewRecordsService(repos, false)
	reports := NewReportService(repos.Lessons, 100)

	_, _ = records.RecordLesson(ctx, &academic.Lesson{ClassID: 4, Date: "03/03/2025", Content: "Apresentacao"})
	_, _ = records.RecordLesson(ctx, &academic.Lesson{ClassID: 5, Date: "04/03/2025", Content: "Outra turma"})
	_, _ = records.RecordLesson(ctx, &academic.Lesson{ClassID: 4, Date: "10/03/2025", Content: "Recursao"})

	var buf bytes.Buffer
	n, err := reports.GenerateClassReport(ctx, 4, &buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 lessons, got %d", n)
	}

	out := buf.String()
	for _, want := range []string{
		"  DIÁRIO DE CLASSE - TURMA ID 4\n",
		"Data: 03/03/2025\nConteúdo: Apresentacao\n",
		"Data: 10/03/2025\nConteúdo: Recursao\n",
		"Total de aulas ministradas: 2\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Outra turma") {
		t.Error("Expected lessons from other classes to be excluded")
	}
}

func TestReportService_WriteClassReport(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)
	reports := NewReportService(repos.Lessons, 100)

	path := filepath.Join(t.TempDir(), "relatorios", "turma_9.txt")
	n, err := reports.WriteClassReport(ctx, 9, path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 lessons, got %d", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected report file, got %v", err)
	}
	if !strings.Contains(string(data), "Total de aulas ministradas: 0") {
		t.Errorf("Unexpected report:\n%s", data)
	}
}
