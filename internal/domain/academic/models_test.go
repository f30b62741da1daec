package academic

import (
	"strings"
	"testing"
)

func TestStudentNormalize_TruncatesLongFields(t *testing.T) {
	s := Student{RA: 1, Name: strings.Repeat("a", 150), Email: "ana@x.com"}
	s.Normalize()

	if len(s.Name) != MaxNameLen {
		t.Errorf("Expected name length %d, got %d", MaxNameLen, len(s.Name))
	}
	if s.Email != "ana@x.com" {
		t.Errorf("Expected email to be untouched, got %s", s.Email)
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	got := Truncate("Conceição", 6)
	if got != "Concei" {
		t.Errorf("Expected Concei, got %s", got)
	}
	if Truncate("ção", 10) != "ção" {
		t.Error("Expected short string to be unchanged")
	}
}

func TestEnrollmentKey(t *testing.T) {
	e := Enrollment{RA: 1, ClassID: 9}
	if e.Key() != (EnrollmentKey{RA: 1, ClassID: 9}) {
		t.Errorf("Unexpected key %+v", e.Key())
	}
}
