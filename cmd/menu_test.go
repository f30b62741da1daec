package cmd

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"academic-records/internal/api/tcp"
	"academic-records/internal/config"
	"academic-records/internal/domain/user"
)

func newTestMenu(t *testing.T) *menu {
	t.Helper()

	cfg := &config.Config{
		Storage: config.StorageConfig{
			DataDir:     t.TempDir(),
			Students:    config.EntityStorageConfig{File: "alunos.csv", Capacity: 100},
			Classes:     config.EntityStorageConfig{File: "turmas.csv", Capacity: 100},
			Lessons:     config.EntityStorageConfig{File: "aulas.csv", Capacity: 100},
			Enrollments: config.EntityStorageConfig{File: "aluno_turma.csv", Capacity: 100},
			Activities:  config.EntityStorageConfig{File: "atividades.csv", Capacity: 100},
			Users:       config.EntityStorageConfig{File: "usuarios.csv", Capacity: 100},
		},
		Session: config.SessionConfig{TTLMinutes: 60},
		Cache:   config.CacheConfig{Type: "memory"},
	}

	app, err := newApplication(cfg)
	if err != nil {
		t.Fatalf("Failed to build application: %v", err)
	}
	t.Cleanup(app.close)

	if _, err := app.prepare(context.Background()); err != nil {
		t.Fatalf("Failed to prepare data files: %v", err)
	}

	return &menu{
		app:        app,
		dispatcher: tcp.NewDispatcher(app.records, app.reports, app.auth, app.auditor, tcp.Options{RequireAuth: true}),
		state:      &tcp.ConnState{},
	}
}

// option returns the number an admin types to pick label.
func (m *menu) option(t *testing.T, label string) string {
	t.Helper()

	saved := m.session
	m.session = &user.Session{Role: user.RoleAdmin}
	defer func() { m.session = saved }()

	for i, item := range m.visibleItems() {
		if item.label == label {
			return strconv.Itoa(i + 1)
		}
	}
	t.Fatalf("No menu option %q", label)
	return ""
}

func TestMenu_AdminManagesUsers(t *testing.T) {
	m := newTestMenu(t)

	input := []string{
		"admin", "admin123",
		m.option(t, "Cadastrar usuario"), "prof.lima", "segredo1", "ALUNO",
		m.option(t, "Alterar usuario"), "2", "PROFESSOR", "",
		m.option(t, "Redefinir senha de usuario"), "2", "novasenha",
		m.option(t, "Listar usuarios"),
		"0",
	}
	var out bytes.Buffer
	m.in = bufio.NewScanner(strings.NewReader(strings.Join(input, "\n") + "\n"))
	m.out = &out

	if err := m.loop(context.Background()); err != nil {
		t.Fatalf("Expected menu to exit cleanly, got %v\n%s", err, out.String())
	}

	for _, want := range []string{
		"Usuario prof.lima criado com ID 2",
		"Usuario prof.lima atualizado (PROFESSOR, ativo=true)",
		"Senha redefinida",
		"2 prof.lima PROFESSOR ativo=true",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	session, err := m.app.auth.Authenticate(context.Background(), "prof.lima", "novasenha")
	if err != nil {
		t.Fatalf("Expected new password to work, got %v", err)
	}
	if session.Role != user.RoleProfessor {
		t.Errorf("Expected role PROFESSOR, got %s", session.Role)
	}
}

func TestMenu_UpdateUserRejectsBadAnswers(t *testing.T) {
	m := newTestMenu(t)

	input := []string{
		"admin", "admin123",
		m.option(t, "Alterar usuario"), "abc",
		m.option(t, "Alterar usuario"), "1", "", "talvez",
		"0",
	}
	var out bytes.Buffer
	m.in = bufio.NewScanner(strings.NewReader(strings.Join(input, "\n") + "\n"))
	m.out = &out

	if err := m.loop(context.Background()); err != nil {
		t.Fatalf("Expected menu to exit cleanly, got %v", err)
	}
	if got := strings.Count(out.String(), "Erro: "); got != 2 {
		t.Errorf("Expected 2 errors, got %d:\n%s", got, out.String())
	}
}
