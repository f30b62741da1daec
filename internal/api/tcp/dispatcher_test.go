package tcp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"academic-records/internal/config"
	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/cache"
	"academic-records/internal/infrastructure/repository"
	"academic-records/internal/service"
	"academic-records/pkg/apperror"
)

type fixture struct {
	dispatcher *Dispatcher
	users      user.UserService
}

func newFixture(t *testing.T, requireAuth bool) *fixture {
	t.Helper()
	ctx := context.Background()

	repos := repository.NewRepositories(config.StorageConfig{
		DataDir:     t.TempDir(),
		Students:    config.EntityStorageConfig{File: "alunos.csv", Capacity: 100},
		Classes:     config.EntityStorageConfig{File: "turmas.csv", Capacity: 100},
		Lessons:     config.EntityStorageConfig{File: "aulas.csv", Capacity: 100},
		Enrollments: config.EntityStorageConfig{File: "aluno_turma.csv", Capacity: 100},
		Activities:  config.EntityStorageConfig{File: "atividades.csv", Capacity: 100},
		Users:       config.EntityStorageConfig{File: "usuarios.csv", Capacity: 100},
	})

	auth := service.NewAuthService(repos.Users, cache.NewMemoryCache(), nil, time.Hour)
	if err := auth.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatalf("Failed to create default admin: %v", err)
	}

	d := NewDispatcher(
		service.NewRecordsService(repos, false),
		service.NewReportService(repos.Lessons, 100),
		auth,
		nil,
		Options{RequireAuth: requireAuth},
	)
	return &fixture{dispatcher: d, users: service.NewUserService(repos.Users)}
}

func (f *fixture) send(t *testing.T, st *ConnState, line string) Response {
	t.Helper()
	return f.dispatcher.Handle(context.Background(), st, line)
}

func expectLine(t *testing.T, resp Response, want string) {
	t.Helper()
	if resp.Status() != want {
		t.Errorf("Expected %q, got %q", want, resp.Status())
	}
}

func expectError(t *testing.T, resp Response, code string) {
	t.Helper()
	if !strings.HasPrefix(resp.Status(), "ERRO:"+code+":") {
		t.Errorf("Expected ERRO:%s, got %q", code, resp.Status())
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest("registrar_aula:3,10/03/2025,Listas: pilhas, filas\r\n")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Command != "REGISTRAR_AULA" {
		t.Errorf("Expected REGISTRAR_AULA, got %s", req.Command)
	}

	f, err := req.Fields(3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if f[2] != "Listas: pilhas, filas" {
		t.Errorf("Expected content to keep separators, got %q", f[2])
	}

	if _, err := req.Fields(4); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if _, err := ParseRequest("   "); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestDispatcher_PublicCommands(t *testing.T) {
	f := newFixture(t, true)
	st := &ConnState{}

	expectLine(t, f.send(t, st, "PING"), "PONG")

	resp := f.send(t, st, "SAIR")
	expectLine(t, resp, "OK:Desconectando")
	if !resp.Close {
		t.Error("Expected SAIR to close the connection")
	}

	expectError(t, f.send(t, st, "FOO:1"), "INVALID_ARGUMENT")
}

func TestDispatcher_LoginRequired(t *testing.T) {
	f := newFixture(t, true)
	st := &ConnState{}

	expectError(t, f.send(t, st, "LISTAR_ALUNOS"), "UNAUTHORIZED")
	expectError(t, f.send(t, st, "LOGIN:admin,errada"), "UNAUTHORIZED")
	expectError(t, f.send(t, st, "LOGIN:admin"), "INVALID_ARGUMENT")

	expectLine(t, f.send(t, st, "LOGIN:admin,admin123"), "OK:ADMIN:1:admin")
	if st.Token == "" {
		t.Fatal("Expected login to bind a session token")
	}
	expectLine(t, f.send(t, st, "LISTAR_ALUNOS"), "OK:0")

	expectLine(t, f.send(t, st, "LOGOUT"), "OK:Sessao encerrada")
	expectError(t, f.send(t, st, "LISTAR_ALUNOS"), "UNAUTHORIZED")
}

func TestDispatcher_RolePermissions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, &user.CreateUserRequest{Login: "prof.lima", Password: "segredo1", Role: user.RoleProfessor})
	if err != nil {
		t.Fatalf("Failed to create professor: %v", err)
	}

	admin := &ConnState{}
	expectLine(t, f.send(t, admin, "LOGIN:admin,admin123"), "OK:ADMIN:1:admin")
	expectLine(t, f.send(t, admin, "CADASTRAR_ALUNO:1001,Ana Souza,ana@uni.br"), "OK:Aluno cadastrado com sucesso")

	prof := &ConnState{}
	expectLine(t, f.send(t, prof, "LOGIN:prof.lima,segredo1"), "OK:PROFESSOR:2:prof.lima")
	expectLine(t, f.send(t, prof, "BUSCAR_ALUNO:1001"), "OK:1001,Ana Souza,ana@uni.br,1")
	expectError(t, f.send(t, prof, "EXCLUIR_ALUNO:1001"), "FORBIDDEN")
	expectError(t, f.send(t, prof, "CADASTRAR_ALUNO:1002,Bruno,b@uni.br"), "FORBIDDEN")
	expectLine(t, f.send(t, prof, "CADASTRAR_TURMA:Algoritmos,Lima,2025,1"), "OK:1:Turma cadastrada com sucesso")
}

func TestDispatcher_Students(t *testing.T) {
	f := newFixture(t, false)
	st := &ConnState{}

	expectLine(t, f.send(t, st, "SUGERIR_RA"), "OK:1001")
	expectLine(t, f.send(t, st, "CADASTRAR_ALUNO:1001,Ana Souza,ana@uni.br"), "OK:Aluno cadastrado com sucesso")
	expectError(t, f.send(t, st, "CADASTRAR_ALUNO:1001,Outra Ana,x@uni.br"), "DUPLICATE_KEY")
	expectError(t, f.send(t, st, "CADASTRAR_ALUNO:abc,Ana,a@uni.br"), "INVALID_ARGUMENT")
	expectError(t, f.send(t, st, "CADASTRAR_ALUNO:1002,,a@uni.br"), "INVALID_ARGUMENT")
	expectLine(t, f.send(t, st, "SUGERIR_RA"), "OK:1002")

	expectLine(t, f.send(t, st, "ATUALIZAR_ALUNO:1001,Ana S. Souza,ana.souza@uni.br"), "OK:Aluno atualizado com sucesso")
	expectLine(t, f.send(t, st, "BUSCAR_ALUNO:1001"), "OK:1001,Ana S. Souza,ana.souza@uni.br,1")

	expectLine(t, f.send(t, st, "EXCLUIR_ALUNO:1001"), "OK:Aluno desativado com sucesso")
	expectLine(t, f.send(t, st, "BUSCAR_ALUNO:1001"), "OK:1001,Ana S. Souza,ana.souza@uni.br,0")

	resp := f.send(t, st, "LISTAR_ALUNOS")
	if len(resp.Lines) != 2 || resp.Lines[0] != "OK:1" {
		t.Errorf("Expected one listed student, got %v", resp.Lines)
	}

	expectError(t, f.send(t, st, "BUSCAR_ALUNO:9999"), "NOT_FOUND")
}

func TestDispatcher_ClassesLessonsAndEnrollment(t *testing.T) {
	f := newFixture(t, false)
	st := &ConnState{}

	expectLine(t, f.send(t, st, "CADASTRAR_ALUNO:1001,Ana Souza,ana@uni.br"), "OK:Aluno cadastrado com sucesso")
	expectLine(t, f.send(t, st, "CADASTRAR_TURMA:Algoritmos,Lima,2025,1"), "OK:1:Turma cadastrada com sucesso")
	expectError(t, f.send(t, st, "CADASTRAR_TURMA:Algoritmos,Lima,ano,1"), "INVALID_ARGUMENT")
	expectLine(t, f.send(t, st, "ATUALIZAR_TURMA:1,Algoritmos I,Lima,2025,2"), "OK:Turma atualizada com sucesso")
	expectLine(t, f.send(t, st, "BUSCAR_TURMA:1"), "OK:1,Algoritmos I,Lima,2025,2")

	expectLine(t, f.send(t, st, "REGISTRAR_AULA:1,10/03/2025,Vetores, matrizes e ponteiros"), "OK:1:Aula registrada com sucesso")
	expectError(t, f.send(t, st, "REGISTRAR_AULA:1,32/01/2025,Nada"), "VALIDATION_FAILED")

	resp := f.send(t, st, "LISTAR_AULAS_TURMA:1")
	if len(resp.Lines) != 2 || resp.Lines[1] != "1,1,10/03/2025,Vetores, matrizes e ponteiros" {
		t.Errorf("Unexpected lessons %v", resp.Lines)
	}
	expectLine(t, f.send(t, st, "LISTAR_AULAS_DATA:10/03/2025"), "OK:1")

	expectLine(t, f.send(t, st, "ASSOCIAR_ALUNO_TURMA:1001,1"), "OK:Aluno associado a turma com sucesso")
	expectLine(t, f.send(t, st, "ASSOCIAR_ALUNO_TURMA:1001,1"), "OK:Aluno ja associado a turma")

	resp = f.send(t, st, "LISTAR_ALUNOS_TURMA:1")
	if len(resp.Lines) != 2 || resp.Lines[1] != "1001,Ana Souza,ana@uni.br,1" {
		t.Errorf("Unexpected roster %v", resp.Lines)
	}
	resp = f.send(t, st, "LISTAR_TURMAS_ALUNO:1001")
	if len(resp.Lines) != 2 || resp.Lines[1] != "1,Algoritmos I,Lima,2025,2" {
		t.Errorf("Unexpected classes %v", resp.Lines)
	}

	expectLine(t, f.send(t, st, "DESASSOCIAR_ALUNO_TURMA:1001,1"), "OK:Aluno removido da turma")
	expectError(t, f.send(t, st, "DESASSOCIAR_ALUNO_TURMA:1001,1"), "NOT_FOUND")

	expectLine(t, f.send(t, st, "EXCLUIR_AULA:1"), "OK:Aula excluida com sucesso")
	expectLine(t, f.send(t, st, "LISTAR_AULAS_TURMA:1"), "OK:0")
	expectLine(t, f.send(t, st, "EXCLUIR_TURMA:1"), "OK:Turma excluida com sucesso")
	expectError(t, f.send(t, st, "BUSCAR_TURMA:1"), "NOT_FOUND")
}

func TestDispatcher_ActivitiesAndReport(t *testing.T) {
	f := newFixture(t, false)
	st := &ConnState{}

	expectLine(t, f.send(t, st, "CADASTRAR_ATIVIDADE:4,Lista 1,Exercicios de recursao,uploads/lista1.pdf"), "OK:1:Atividade cadastrada com sucesso")
	resp := f.send(t, st, "LISTAR_ATIVIDADES_TURMA:4")
	if len(resp.Lines) != 2 || resp.Lines[1] != "1,4,Lista 1,Exercicios de recursao,uploads/lista1.pdf" {
		t.Errorf("Unexpected activities %v", resp.Lines)
	}
	expectLine(t, f.send(t, st, "EXCLUIR_ATIVIDADE:1"), "OK:Atividade excluida com sucesso")
	expectError(t, f.send(t, st, "EXCLUIR_ATIVIDADE:1"), "NOT_FOUND")

	expectLine(t, f.send(t, st, "REGISTRAR_AULA:4,03/03/2025,Apresentacao"), "OK:1:Aula registrada com sucesso")
	resp = f.send(t, st, "GERAR_RELATORIO:4")
	if resp.Failed() {
		t.Fatalf("Expected report, got %v", resp.Lines)
	}
	body := strings.Join(resp.Lines[1:], "\n")
	if !strings.Contains(body, "DIÁRIO DE CLASSE - TURMA ID 4") || !strings.Contains(body, "Total de aulas ministradas: 1") {
		t.Errorf("Unexpected report:\n%s", body)
	}
	if resp.Lines[0] != "OK:"+strconv.Itoa(len(resp.Lines)-1) {
		t.Errorf("Expected count line to match body, got %q for %d lines", resp.Lines[0], len(resp.Lines)-1)
	}
}
