package validator

import (
	"errors"
	"testing"

	"academic-records/pkg/apperror"
)

func TestIsDiaryDate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"15/03/2025", true},
		{"31/04/2025", true}, // month length is not checked
		{"29/02/2023", true}, // neither are leap years
		{"01/01/1900", true},
		{"31/12/2100", true},
		{"32/01/2025", false},
		{"00/01/2025", false},
		{"10/13/2025", false},
		{"10/00/2025", false},
		{"10/10/1899", false},
		{"10/10/2101", false},
		{"2025/01/31", false},
		{"1/01/2025", false},
		{"01/01/202", false},
		{"01-01-2025", false},
		{"0a/01/2025", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsDiaryDate(tc.in); got != tc.want {
			t.Errorf("IsDiaryDate(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestDiaryDateKey_OrdersChronologically(t *testing.T) {
	a, ok := DiaryDateKey("31/01/2025")
	if !ok {
		t.Fatal("Expected 31/01/2025 to be valid")
	}
	b, ok := DiaryDateKey("01/02/2025")
	if !ok {
		t.Fatal("Expected 01/02/2025 to be valid")
	}
	if a >= b {
		t.Errorf("Expected %d < %d", a, b)
	}
	if _, ok := DiaryDateKey("2025-02-01"); ok {
		t.Error("Expected invalid date to be rejected")
	}
}

func TestIsLogin(t *testing.T) {
	valid := []string{"admin", "prof.silva", "ana_2025", "abc"}
	invalid := []string{"ab", "1admin", "_admin", "bad login", "x,y", ""}

	for _, s := range valid {
		if !IsLogin(s) {
			t.Errorf("Expected %q to be a valid login", s)
		}
	}
	for _, s := range invalid {
		if IsLogin(s) {
			t.Errorf("Expected %q to be an invalid login", s)
		}
	}
}

type sample struct {
	Name string `validate:"required"`
	Date string `validate:"diarydate"`
}

func TestCheck_ClassifiesFailures(t *testing.T) {
	err := Check(&sample{Name: "", Date: "01/01/2025"})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}

	err = Check(&sample{Name: "x", Date: "32/01/2025"})
	if !errors.Is(err, apperror.ErrValidationFailed) {
		t.Errorf("Expected ErrValidationFailed, got %v", err)
	}

	if err := Check(&sample{Name: "x", Date: "31/01/2025"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
