package academic

import "unicode/utf8"

// Field ceilings. Longer values are truncated when a record is normalized.
const (
	MaxNameLen      = 99
	MaxClassNameLen = 49
	MaxContentLen   = 499
	MaxPathLen      = 199
	MaxDateLen      = 10
)

// StudentRAFloor is the lowest RA suggested for a new student.
const StudentRAFloor = 1001

// Student is keyed by its registration number (RA). Removal only clears Active.
type Student struct {
	RA     int    `json:"ra" validate:"gt=0"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

// Normalize truncates text fields to their ceilings.
func (s *Student) Normalize() {
	s.Name = Truncate(s.Name, MaxNameLen)
	s.Email = Truncate(s.Email, MaxNameLen)
}

// ClassSection is a class offered in a given year and term.
type ClassSection struct {
	ID         int    `json:"id" validate:"gt=0"`
	Name       string `json:"name" validate:"required"`
	Instructor string `json:"instructor"`
	Year       int    `json:"year"`
	Term       int    `json:"term"`
}

func (c *ClassSection) Normalize() {
	c.Name = Truncate(c.Name, MaxClassNameLen)
	c.Instructor = Truncate(c.Instructor, MaxNameLen)
}

// Lesson is one entry of a class diary. ClassID is not checked against the
// class store.
type Lesson struct {
	ID      int    `json:"id" validate:"gt=0"`
	ClassID int    `json:"class_id"`
	Date    string `json:"date" validate:"diarydate"`
	Content string `json:"content"`
}

func (l *Lesson) Normalize() {
	l.Content = Truncate(l.Content, MaxContentLen)
}

// EnrollmentKey identifies an enrollment; it is also its only content.
type EnrollmentKey struct {
	RA      int
	ClassID int
}

// Enrollment associates a student RA with a class id. Neither side is
// resolved against its store.
type Enrollment struct {
	RA      int `json:"ra"`
	ClassID int `json:"class_id"`
}

func (e Enrollment) Key() EnrollmentKey {
	return EnrollmentKey{RA: e.RA, ClassID: e.ClassID}
}

// Activity is an assignment published for a class, optionally pointing at a file.
type Activity struct {
	ID          int    `json:"id" validate:"gt=0"`
	ClassID     int    `json:"class_id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	FilePath    string `json:"file_path,omitempty"`
}

func (a *Activity) Normalize() {
	a.Title = Truncate(a.Title, MaxNameLen)
	a.Description = Truncate(a.Description, MaxContentLen)
	a.FilePath = Truncate(a.FilePath, MaxPathLen)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// AssociateOutcome tells a new enrollment apart from one that already existed.
type AssociateOutcome int

const (
	Associated AssociateOutcome = iota
	AlreadyAssociated
)

func (o AssociateOutcome) String() string {
	if o == AlreadyAssociated {
		return "already_associated"
	}
	return "associated"
}
