package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	infrastructure "academic-records/internal/interfaces/infrastructure"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"
)

const (
	reportRule = "========================================"
	lessonRule = "----------------------------------------"
)

type reportService struct {
	lessons  infrastructure.LessonRepository
	capacity int
}

// NewReportService renders class diaries from the lesson store. capacity
// bounds how many lessons a report reads.
func NewReportService(lessons infrastructure.LessonRepository, capacity int) serviceInterfaces.ReportService {
	if capacity <= 0 {
		capacity = 5000
	}
	return &reportService{lessons: lessons, capacity: capacity}
}

// GenerateClassReport writes the diary of classID to w and returns how many
// lessons it lists.
func (s *reportService) GenerateClassReport(ctx context.Context, classID int, w io.Writer) (int, error) {
	lessons, err := s.lessons.ListByClass(ctx, classID, s.capacity)
	if err != nil {
		return 0, fmt.Errorf("failed to load lessons: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, reportRule)
	fmt.Fprintf(bw, "  DIÁRIO DE CLASSE - TURMA ID %d\n", classID)
	fmt.Fprintln(bw, reportRule)
	fmt.Fprintln(bw)

	for _, l := range lessons {
		fmt.Fprintf(bw, "Data: %s\n", l.Date)
		fmt.Fprintf(bw, "Conteúdo: %s\n", l.Content)
		fmt.Fprintln(bw, lessonRule)
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, reportRule)
	fmt.Fprintf(bw, "Total de aulas ministradas: %d\n", len(lessons))
	fmt.Fprintln(bw, reportRule)

	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write report: %w", err)
	}
	return len(lessons), nil
}

// WriteClassReport renders the diary into the file at path.
func (s *reportService) WriteClassReport(ctx context.Context, classID int, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: report path is empty", apperror.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}

	n, err := s.GenerateClassReport(ctx, classID, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, cerr)
	}
	if err != nil {
		return 0, err
	}

	logger.Info("Report for class %d written to %s (%d lessons)", classID, path, n)
	return n, nil
}
