package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"academic-records/internal/api/tcp"
	"academic-records/internal/config"
	"academic-records/internal/domain/user"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive text menu",
	Long: `Log in and work with the records from a numbered text menu.
Only the options allowed for the user's role are shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMenu()
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

// menuItem either sends a wire command built from its prompts or runs a
// custom step.
type menuItem struct {
	label   string
	action  user.Action
	command string
	prompts []string
	run     func(m *menu) error
}

type menu struct {
	app        *application
	dispatcher *tcp.Dispatcher
	state      *tcp.ConnState
	session    *user.Session
	in         *bufio.Scanner
	out        io.Writer
}

func runMenu() {
	cfg := config.Get()
	app, err := newApplication(cfg)
	if err != nil {
		logger.Error("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer app.close()

	if _, err := app.prepare(context.Background()); err != nil {
		logger.Error("Failed to prepare data files: %v", err)
		os.Exit(1)
	}

	m := &menu{
		app: app,
		dispatcher: tcp.NewDispatcher(app.records, app.reports, app.auth, app.auditor, tcp.Options{
			RequireAuth: true,
			ListLimit:   app.listLimit(),
		}),
		state: &tcp.ConnState{},
		in:    bufio.NewScanner(os.Stdin),
		out:   os.Stdout,
	}
	if err := m.loop(context.Background()); err != nil && err != io.EOF {
		logger.Error("Menu stopped: %v", err)
		os.Exit(1)
	}
}

func (m *menu) items() []menuItem {
	return []menuItem{
		{label: "Listar alunos", action: user.ActionViewStudents, command: "LISTAR_ALUNOS"},
		{label: "Cadastrar aluno", action: user.ActionCreateStudent, run: (*menu).createStudent},
		{label: "Buscar aluno", action: user.ActionViewStudents, command: "BUSCAR_ALUNO", prompts: []string{"RA"}},
		{label: "Desativar aluno", action: user.ActionDeleteStudent, command: "EXCLUIR_ALUNO", prompts: []string{"RA"}},
		{label: "Listar turmas", action: user.ActionViewClasses, command: "LISTAR_TURMAS"},
		{label: "Cadastrar turma", action: user.ActionCreateClass, command: "CADASTRAR_TURMA", prompts: []string{"Nome", "Professor", "Ano", "Semestre"}},
		{label: "Registrar aula", action: user.ActionRecordLesson, command: "REGISTRAR_AULA", prompts: []string{"ID da turma", "Data (DD/MM/AAAA)", "Conteudo"}},
		{label: "Listar aulas da turma", action: user.ActionViewLessons, command: "LISTAR_AULAS_TURMA", prompts: []string{"ID da turma"}},
		{label: "Associar aluno a turma", action: user.ActionEnroll, command: "ASSOCIAR_ALUNO_TURMA", prompts: []string{"RA", "ID da turma"}},
		{label: "Listar alunos da turma", action: user.ActionViewStudents, command: "LISTAR_ALUNOS_TURMA", prompts: []string{"ID da turma"}},
		{label: "Cadastrar atividade", action: user.ActionUploadActivity, command: "CADASTRAR_ATIVIDADE", prompts: []string{"ID da turma", "Titulo", "Descricao", "Arquivo"}},
		{label: "Listar atividades da turma", action: user.ActionDownloadActivity, command: "LISTAR_ATIVIDADES_TURMA", prompts: []string{"ID da turma"}},
		{label: "Gerar relatorio da turma", action: user.ActionGenerateReport, command: "GERAR_RELATORIO", prompts: []string{"ID da turma"}},
		{label: "Cadastrar usuario", action: user.ActionManageUsers, run: (*menu).createUser},
		{label: "Listar usuarios", action: user.ActionManageUsers, run: (*menu).listUsers},
		{label: "Alterar usuario", action: user.ActionManageUsers, run: (*menu).updateUser},
		{label: "Redefinir senha de usuario", action: user.ActionManageUsers, run: (*menu).resetPassword},
		{label: "Alterar minha senha", run: (*menu).changePassword},
	}
}

func (m *menu) loop(ctx context.Context) error {
	if err := m.login(ctx); err != nil {
		return err
	}
	defer m.dispatcher.Release(ctx, m.state)

	for {
		visible := m.visibleItems()

		fmt.Fprintf(m.out, "\n=== Sistema Academico (%s - %s) ===\n", m.session.Login, m.session.Role)
		for i, item := range visible {
			fmt.Fprintf(m.out, "%2d. %s\n", i+1, item.label)
		}
		fmt.Fprintln(m.out, " 0. Sair")

		choice, err := m.ask("Opcao")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(choice)
		if err != nil || n < 0 || n > len(visible) {
			fmt.Fprintln(m.out, "Opcao invalida")
			continue
		}
		if n == 0 {
			return nil
		}

		if err := m.runItem(ctx, visible[n-1]); err != nil {
			if err == io.EOF {
				return err
			}
			fmt.Fprintf(m.out, "Erro: %v\n", err)
		}
	}
}

func (m *menu) visibleItems() []menuItem {
	var visible []menuItem
	for _, item := range m.items() {
		if item.action == "" || m.app.auth.HasPermission(m.session, item.action) {
			visible = append(visible, item)
		}
	}
	return visible
}

func (m *menu) login(ctx context.Context) error {
	for attempt := 0; attempt < 3; attempt++ {
		login, err := m.ask("Login")
		if err != nil {
			return err
		}
		password, err := m.ask("Senha")
		if err != nil {
			return err
		}

		resp := m.dispatcher.Handle(ctx, m.state, "LOGIN:"+login+","+password)
		if resp.Failed() {
			m.print(resp)
			continue
		}

		session, err := m.app.auth.ValidateSession(ctx, m.state.Token)
		if err != nil {
			return err
		}
		m.session = session
		return nil
	}
	return fmt.Errorf("too many failed login attempts")
}

func (m *menu) runItem(ctx context.Context, item menuItem) error {
	if item.run != nil {
		return item.run(m)
	}

	answers := make([]string, 0, len(item.prompts))
	for _, p := range item.prompts {
		a, err := m.ask(p)
		if err != nil {
			return err
		}
		answers = append(answers, a)
	}

	line := item.command
	if len(answers) > 0 {
		line += ":" + strings.Join(answers, ",")
	}
	m.print(m.dispatcher.Handle(ctx, m.state, line))
	return nil
}

func (m *menu) createStudent() error {
	ctx := context.Background()
	suggested, err := m.app.records.SuggestRA(ctx)
	if err != nil {
		return err
	}

	ra, err := m.ask(fmt.Sprintf("RA [%d]", suggested))
	if err != nil {
		return err
	}
	if ra == "" {
		ra = strconv.Itoa(suggested)
	}
	name, err := m.ask("Nome")
	if err != nil {
		return err
	}
	email, err := m.ask("Email")
	if err != nil {
		return err
	}

	m.print(m.dispatcher.Handle(ctx, m.state, "CADASTRAR_ALUNO:"+ra+","+name+","+email))
	return nil
}

func (m *menu) createUser() error {
	login, err := m.ask("Login")
	if err != nil {
		return err
	}
	password, err := m.ask("Senha")
	if err != nil {
		return err
	}
	roleName, err := m.ask("Tipo (ADMIN, PROFESSOR, ALUNO)")
	if err != nil {
		return err
	}
	role, err := user.ParseRole(roleName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	u, err := m.app.users.CreateUser(ctx, &user.CreateUserRequest{Login: login, Password: password, Role: role})
	m.app.auditor.Action(ctx, m.session, string(user.ActionManageUsers), "create "+login, err == nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Usuario %s criado com ID %d\n", u.Login, u.ID)
	return nil
}

func (m *menu) listUsers() error {
	users, err := m.app.users.ListUsers(context.Background(), m.app.listLimit())
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(m.out, "%d %s %s ativo=%t\n", u.ID, u.Login, u.Role, u.Active)
	}
	return nil
}

func (m *menu) askUserID() (int, error) {
	raw, err := m.ask("ID do usuario")
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", apperror.ErrInvalidArgument, raw)
	}
	return id, nil
}

// updateUser changes the role or active flag of an account. Blank answers
// keep the current value.
func (m *menu) updateUser() error {
	id, err := m.askUserID()
	if err != nil {
		return err
	}
	roleName, err := m.ask("Novo tipo (ADMIN, PROFESSOR, ALUNO) [manter]")
	if err != nil {
		return err
	}
	active, err := m.ask("Ativo (s/n) [manter]")
	if err != nil {
		return err
	}

	req := &user.UpdateUserRequest{}
	if roleName != "" {
		role, err := user.ParseRole(roleName)
		if err != nil {
			return err
		}
		req.Role = &role
	}
	switch strings.ToLower(active) {
	case "":
	case "s":
		v := true
		req.Active = &v
	case "n":
		v := false
		req.Active = &v
	default:
		return fmt.Errorf("%w: answer s or n", apperror.ErrInvalidArgument)
	}

	ctx := context.Background()
	u, err := m.app.users.UpdateUser(ctx, id, req)
	m.app.auditor.Action(ctx, m.session, string(user.ActionManageUsers), "update user "+strconv.Itoa(id), err == nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Usuario %s atualizado (%s, ativo=%t)\n", u.Login, u.Role, u.Active)
	return nil
}

func (m *menu) resetPassword() error {
	id, err := m.askUserID()
	if err != nil {
		return err
	}
	password, err := m.ask("Nova senha")
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = m.app.auth.ResetPassword(ctx, id, password)
	m.app.auditor.Action(ctx, m.session, string(user.ActionManageUsers), "reset password "+strconv.Itoa(id), err == nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Senha redefinida")
	return nil
}

func (m *menu) changePassword() error {
	current, err := m.ask("Senha atual")
	if err != nil {
		return err
	}
	next, err := m.ask("Nova senha")
	if err != nil {
		return err
	}
	if err := m.app.auth.ChangePassword(context.Background(), m.session.UserID, current, next); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Senha alterada")
	return nil
}

func (m *menu) ask(prompt string) (string, error) {
	fmt.Fprintf(m.out, "%s: ", prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *menu) print(resp tcp.Response) {
	for _, line := range resp.Lines {
		fmt.Fprintln(m.out, line)
	}
}
