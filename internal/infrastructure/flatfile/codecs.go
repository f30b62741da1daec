package flatfile

import (
	"fmt"
	"strconv"
	"strings"

	"academic-records/internal/domain/academic"
	"academic-records/internal/domain/user"
)

// StudentCodec maps Student to RA,Nome,Email,Ativo
type StudentCodec struct{}

func (StudentCodec) Schema() Schema { return Schema{Header: "RA,Nome,Email,Ativo"} }

func (StudentCodec) Encode(s academic.Student) []string {
	return []string{itoa(s.RA), s.Name, s.Email, flag(s.Active)}
}

func (StudentCodec) Decode(f []string) (academic.Student, error) {
	ra, err := atoi("RA", f[0])
	if err != nil {
		return academic.Student{}, err
	}
	active, err := atoi("Ativo", f[3])
	if err != nil {
		return academic.Student{}, err
	}
	return academic.Student{RA: ra, Name: f[1], Email: f[2], Active: active != 0}, nil
}

// ClassCodec maps ClassSection to ID,Nome,Professor,Ano,Semestre
type ClassCodec struct{}

func (ClassCodec) Schema() Schema { return Schema{Header: "ID,Nome,Professor,Ano,Semestre"} }

func (ClassCodec) Encode(c academic.ClassSection) []string {
	return []string{itoa(c.ID), c.Name, c.Instructor, itoa(c.Year), itoa(c.Term)}
}

func (ClassCodec) Decode(f []string) (academic.ClassSection, error) {
	nums, err := atois([]string{"ID", "Ano", "Semestre"}, f[0], f[3], f[4])
	if err != nil {
		return academic.ClassSection{}, err
	}
	return academic.ClassSection{ID: nums[0], Name: f[1], Instructor: f[2], Year: nums[1], Term: nums[2]}, nil
}

// LessonCodec maps Lesson to ID,ID_Turma,Data,Conteudo. Content runs to the
// end of the line.
type LessonCodec struct{}

func (LessonCodec) Schema() Schema {
	return Schema{Header: "ID,ID_Turma,Data,Conteudo", GreedyTail: true}
}

func (LessonCodec) Encode(l academic.Lesson) []string {
	return []string{itoa(l.ID), itoa(l.ClassID), l.Date, l.Content}
}

func (LessonCodec) Decode(f []string) (academic.Lesson, error) {
	nums, err := atois([]string{"ID", "ID_Turma"}, f[0], f[1])
	if err != nil {
		return academic.Lesson{}, err
	}
	return academic.Lesson{ID: nums[0], ClassID: nums[1], Date: f[2], Content: f[3]}, nil
}

// ActivityCodec maps Activity to ID,ID_Turma,Titulo,Descricao,Arquivo. The
// file path runs to the end of the line.
type ActivityCodec struct{}

func (ActivityCodec) Schema() Schema {
	return Schema{Header: "ID,ID_Turma,Titulo,Descricao,Arquivo", GreedyTail: true}
}

func (ActivityCodec) Encode(a academic.Activity) []string {
	return []string{itoa(a.ID), itoa(a.ClassID), a.Title, a.Description, a.FilePath}
}

func (ActivityCodec) Decode(f []string) (academic.Activity, error) {
	nums, err := atois([]string{"ID", "ID_Turma"}, f[0], f[1])
	if err != nil {
		return academic.Activity{}, err
	}
	return academic.Activity{ID: nums[0], ClassID: nums[1], Title: f[2], Description: f[3], FilePath: f[4]}, nil
}

// EnrollmentCodec maps Enrollment to RA,ID_Turma
type EnrollmentCodec struct{}

func (EnrollmentCodec) Schema() Schema { return Schema{Header: "RA,ID_Turma"} }

func (EnrollmentCodec) Encode(e academic.Enrollment) []string {
	return []string{itoa(e.RA), itoa(e.ClassID)}
}

func (EnrollmentCodec) Decode(f []string) (academic.Enrollment, error) {
	nums, err := atois([]string{"RA", "ID_Turma"}, f[0], f[1])
	if err != nil {
		return academic.Enrollment{}, err
	}
	return academic.Enrollment{RA: nums[0], ClassID: nums[1]}, nil
}

// UserCodec maps User to ID,Login,SenhaHash,Tipo,Ativo
type UserCodec struct{}

func (UserCodec) Schema() Schema { return Schema{Header: "ID,Login,SenhaHash,Tipo,Ativo"} }

func (UserCodec) Encode(u user.User) []string {
	return []string{itoa(u.ID), u.Login, u.PasswordHash, string(u.Role), flag(u.Active)}
}

func (UserCodec) Decode(f []string) (user.User, error) {
	nums, err := atois([]string{"ID", "Ativo"}, f[0], f[4])
	if err != nil {
		return user.User{}, err
	}
	return user.User{
		ID:           nums[0],
		Login:        f[1],
		PasswordHash: f[2],
		Role:         user.Role(f[3]),
		Active:       nums[1] != 0,
	}, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func atoi(column, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", column, s)
	}
	return n, nil
}

func atois(columns []string, values ...string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		n, err := atoi(columns[i], v)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
