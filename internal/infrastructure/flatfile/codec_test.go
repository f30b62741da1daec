package flatfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"academic-records/internal/domain/academic"
	"academic-records/internal/domain/user"
	"academic-records/pkg/apperror"
)

func TestStudentRoundTrip(t *testing.T) {
	students := []academic.Student{
		{RA: 12345, Name: "Ana Silva", Email: "ana@x.com", Active: true},
		{RA: 12346, Name: "Bruno Costa", Email: "", Active: false},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, StudentCodec{}, students); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(buf.String(), "RA,Nome,Email,Ativo\n") {
		t.Errorf("Expected header line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "12345,Ana Silva,ana@x.com,1\n") {
		t.Errorf("Unexpected encoding: %q", buf.String())
	}

	result, err := Decode(&buf, StudentCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(result.Records, students) {
		t.Errorf("Expected %+v, got %+v", students, result.Records)
	}
	if result.Parsed != 2 || result.Skipped != 0 {
		t.Errorf("Expected 2 parsed, 0 skipped, got %d/%d", result.Parsed, result.Skipped)
	}
}

func TestAllCodecsRoundTrip(t *testing.T) {
	check := func(name string, got, want any) {
		t.Helper()
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: expected %+v, got %+v", name, want, got)
		}
	}

	classes := []academic.ClassSection{{ID: 7, Name: "Algoritmos", Instructor: "Prof. Lima", Year: 2025, Term: 1}}
	check("classes", roundTrip(t, ClassCodec{}, classes), classes)

	lessons := []academic.Lesson{{ID: 1, ClassID: 7, Date: "15/03/2025", Content: "Listas, pilhas e filas"}}
	check("lessons", roundTrip(t, LessonCodec{}, lessons), lessons)

	activities := []academic.Activity{
		{ID: 2, ClassID: 7, Title: "Lista 1", Description: "Exercicios", FilePath: "uploads/lista1.pdf"},
		{ID: 3, ClassID: 7, Title: "Lista 2", Description: "Sem anexo"},
	}
	check("activities", roundTrip(t, ActivityCodec{}, activities), activities)

	enrollments := []academic.Enrollment{{RA: 1, ClassID: 9}, {RA: 2, ClassID: 9}}
	check("enrollments", roundTrip(t, EnrollmentCodec{}, enrollments), enrollments)

	users := []user.User{{ID: 1, Login: "admin", PasswordHash: "$2a$10$abc", Role: user.RoleAdmin, Active: true}}
	check("users", roundTrip(t, UserCodec{}, users), users)
}

func roundTrip[T any](t *testing.T, codec Codec[T], records []T) []T {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, codec, records); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	result, err := Decode(&buf, codec, 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return result.Records
}

func TestDelimiterInTextFieldCorruptsRow(t *testing.T) {
	students := []academic.Student{
		{RA: 1, Name: "Silva, Ana", Email: "ana@x.com", Active: true},
		{RA: 2, Name: "Bruno", Email: "b@x.com", Active: true},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, StudentCodec{}, students); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := Decode(&buf, StudentCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The first row now has five fields and is dropped on read.
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped row, got %d", result.Skipped)
	}
	if len(result.Records) != 1 || result.Records[0].RA != 2 {
		t.Errorf("Expected only RA 2 to survive, got %+v", result.Records)
	}
}

func TestLessonContentKeepsDelimiters(t *testing.T) {
	input := "ID,ID_Turma,Data,Conteudo\n1,7,15/03/2025,Listas, pilhas, filas\n"

	result, err := Decode(strings.NewReader(input), LessonCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(result.Records))
	}
	if result.Records[0].Content != "Listas, pilhas, filas" {
		t.Errorf("Unexpected content %q", result.Records[0].Content)
	}
}

func TestDecode_SkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"RA,Nome,Email,Ativo",
		"1,Ana,ana@x.com,1",
		"2,Bruno",
		"abc,Carla,c@x.com,1",
		"",
		"4,Davi,d@x.com,0",
		"5,Eva,e@x.com,1,extra",
	}, "\n")

	result, err := Decode(strings.NewReader(input), StudentCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Parsed != 2 {
		t.Errorf("Expected 2 parsed rows, got %d", result.Parsed)
	}
	if result.Skipped != 3 {
		t.Errorf("Expected 3 skipped rows, got %d", result.Skipped)
	}
	if result.Records[1].RA != 4 || result.Records[1].Active {
		t.Errorf("Unexpected second record %+v", result.Records[1])
	}
}

func TestDecode_RetainsUnreadRows(t *testing.T) {
	input := "RA,Nome,Email,Ativo\n1,Ana,a@x.com,1\n2,Silva, Bruno,b@x.com,1\n3,Carla,c@x.com,0\n4,Davi,d@x.com,1\n"

	result, err := Decode(strings.NewReader(input), StudentCodec{}, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"2,Silva, Bruno,b@x.com,1", "4,Davi,d@x.com,1"}
	if !reflect.DeepEqual(result.Retained, want) {
		t.Errorf("Expected retained %q, got %q", want, result.Retained)
	}
	if !result.Truncated || result.Skipped != 1 {
		t.Errorf("Expected truncated with 1 skipped, got %+v", result)
	}
}

func TestDecode_StopsAtMax(t *testing.T) {
	input := "RA,ID_Turma\n1,1\n2,1\n3,1\n"

	result, err := Decode(strings.NewReader(input), EnrollmentCodec{}, 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(result.Records))
	}
	if !result.Truncated {
		t.Error("Expected result to be marked truncated")
	}
}

func TestDecode_HandlesCRLF(t *testing.T) {
	input := "RA,ID_Turma\r\n1,9\r\n"

	result, err := Decode(strings.NewReader(input), EnrollmentCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].ClassID != 9 {
		t.Errorf("Unexpected records %+v", result.Records)
	}
}

func TestReadFile_MissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	result, err := ReadFile(path, StudentCodec{}, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Records == nil || len(result.Records) != 0 {
		t.Errorf("Expected empty non-nil collection, got %+v", result.Records)
	}
}

func TestReadFile_DirectoryIsStorageUnavailable(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(dir, StudentCodec{}, 10)
	if !errors.Is(err, apperror.ErrStorageUnavailable) {
		t.Errorf("Expected ErrStorageUnavailable, got %v", err)
	}
}

func TestWriteFile_EmptyCollectionWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "turmas.csv")

	if err := WriteFile(path, ClassCodec{}, nil, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file to exist, got %v", err)
	}
	if string(data) != "ID,Nome,Professor,Ano,Semestre\n" {
		t.Errorf("Unexpected content %q", string(data))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no temp files left behind, found %d entries", len(entries))
	}
}

func TestWriteFile_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aluno_turma.csv")

	if err := WriteFile(path, EnrollmentCodec{}, []academic.Enrollment{{RA: 1, ClassID: 1}, {RA: 2, ClassID: 1}}, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := WriteFile(path, EnrollmentCodec{}, []academic.Enrollment{{RA: 3, ClassID: 2}}, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := ReadFile(path, EnrollmentCodec{}, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].RA != 3 {
		t.Errorf("Expected only the last save to be visible, got %+v", result.Records)
	}
}

func TestWriteFile_AppendsRetainedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aluno_turma.csv")

	if err := WriteFile(path, EnrollmentCodec{}, []academic.Enrollment{{RA: 1, ClassID: 1}}, []string{"x,y", "9,9"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected file to exist, got %v", err)
	}
	if string(data) != "RA,ID_Turma\n1,1\nx,y\n9,9\n" {
		t.Errorf("Unexpected content %q", string(data))
	}
}
