package validator

import (
	"github.com/go-playground/validator/v10"
)

const (
	loginMinLen = 3
	loginMaxLen = 49
)

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("diarydate", func(fl validator.FieldLevel) bool {
		return IsDiaryDate(fl.Field().String())
	})
	_ = v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return IsLogin(fl.Field().String())
	})
}

// IsDiaryDate reports whether s is a DD/MM/YYYY date with day in [1,31],
// month in [1,12] and year in [1900,2100]. Month lengths and leap years are
// not checked, so 31/04/2025 is accepted.
func IsDiaryDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	if s[2] != '/' || s[5] != '/' {
		return false
	}
	for i := 0; i < 10; i++ {
		if i == 2 || i == 5 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	day := digits(s[0:2])
	month := digits(s[3:5])
	year := digits(s[6:10])

	if day < 1 || day > 31 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if year < 1900 || year > 2100 {
		return false
	}
	return true
}

// DiaryDateKey turns a valid DD/MM/YYYY date into a sortable YYYYMMDD number.
// It returns false when s is not a valid diary date.
func DiaryDateKey(s string) (int, bool) {
	if !IsDiaryDate(s) {
		return 0, false
	}
	return digits(s[6:10])*10000 + digits(s[3:5])*100 + digits(s[0:2]), true
}

// IsLogin reports whether s is an acceptable user login.
func IsLogin(s string) bool {
	if len(s) < loginMinLen || len(s) > loginMaxLen {
		return false
	}
	if !isLetter(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !isDigit(c) && c != '.' && c != '_' {
			return false
		}
	}
	return true
}

func digits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
