package tcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"academic-records/internal/domain/academic"
	"academic-records/internal/domain/user"
	"academic-records/internal/infrastructure/flatfile"
	serviceInterfaces "academic-records/internal/interfaces/service"
	"academic-records/internal/service"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"
)

const defaultListLimit = 1000

// ConnState is the per-connection login state.
type ConnState struct {
	Token string
	Login string
}

// Options tunes the dispatcher.
type Options struct {
	RequireAuth bool
	// ListLimit caps how many rows a list command returns.
	ListLimit int
}

type handlerFunc func(ctx context.Context, st *ConnState, req Request) Response

type command struct {
	// action is the permission required; empty means the command is public.
	action user.Action
	run    handlerFunc
}

// Dispatcher maps wire commands onto the record, report and auth services.
type Dispatcher struct {
	records  serviceInterfaces.RecordsService
	reports  serviceInterfaces.ReportService
	auth     user.AuthService
	audit    serviceInterfaces.Auditor
	opts     Options
	commands map[string]command
}

func NewDispatcher(records serviceInterfaces.RecordsService, reports serviceInterfaces.ReportService, auth user.AuthService, audit serviceInterfaces.Auditor, opts Options) *Dispatcher {
	if opts.ListLimit <= 0 {
		opts.ListLimit = defaultListLimit
	}
	if audit == nil {
		audit = service.NopAuditor()
	}
	d := &Dispatcher{
		records: records,
		reports: reports,
		auth:    auth,
		audit:   audit,
		opts:    opts,
	}
	d.commands = map[string]command{
		"PING":   {run: d.ping},
		"SAIR":   {run: d.quit},
		"LOGIN":  {run: d.login},
		"LOGOUT": {run: d.logout},

		"LISTAR_ALUNOS":   {action: user.ActionViewStudents, run: d.listStudents},
		"CADASTRAR_ALUNO": {action: user.ActionCreateStudent, run: d.createStudent},
		"BUSCAR_ALUNO":    {action: user.ActionViewStudents, run: d.findStudent},
		"ATUALIZAR_ALUNO": {action: user.ActionEditStudent, run: d.updateStudent},
		"EXCLUIR_ALUNO":   {action: user.ActionDeleteStudent, run: d.deleteStudent},
		"SUGERIR_RA":      {action: user.ActionCreateStudent, run: d.suggestRA},

		"LISTAR_TURMAS":   {action: user.ActionViewClasses, run: d.listClasses},
		"CADASTRAR_TURMA": {action: user.ActionCreateClass, run: d.createClass},
		"BUSCAR_TURMA":    {action: user.ActionViewClasses, run: d.findClass},
		"ATUALIZAR_TURMA": {action: user.ActionEditClass, run: d.updateClass},
		"EXCLUIR_TURMA":   {action: user.ActionDeleteClass, run: d.deleteClass},

		"REGISTRAR_AULA":     {action: user.ActionRecordLesson, run: d.recordLesson},
		"LISTAR_AULAS_TURMA": {action: user.ActionViewLessons, run: d.lessonsOfClass},
		"LISTAR_AULAS_DATA":  {action: user.ActionViewLessons, run: d.lessonsOnDate},
		"EXCLUIR_AULA":       {action: user.ActionRecordLesson, run: d.deleteLesson},

		"ASSOCIAR_ALUNO_TURMA":    {action: user.ActionEnroll, run: d.enroll},
		"DESASSOCIAR_ALUNO_TURMA": {action: user.ActionEnroll, run: d.unenroll},
		"LISTAR_ALUNOS_TURMA":     {action: user.ActionViewStudents, run: d.studentsOfClass},
		"LISTAR_TURMAS_ALUNO":     {action: user.ActionViewClasses, run: d.classesOfStudent},

		"CADASTRAR_ATIVIDADE":     {action: user.ActionUploadActivity, run: d.createActivity},
		"LISTAR_ATIVIDADES_TURMA": {action: user.ActionDownloadActivity, run: d.activitiesOfClass},
		"EXCLUIR_ATIVIDADE":       {action: user.ActionUploadActivity, run: d.deleteActivity},

		"GERAR_RELATORIO": {action: user.ActionGenerateReport, run: d.report},
	}
	return d
}

// Handle runs one wire line and returns the response to send. Errors never
// escape as Go errors; they become ERRO responses.
func (d *Dispatcher) Handle(ctx context.Context, st *ConnState, line string) Response {
	req, err := ParseRequest(line)
	if err != nil {
		return Fail(err)
	}

	cmd, ok := d.commands[req.Command]
	if !ok {
		return Fail(fmt.Errorf("%w: unknown command %s", apperror.ErrInvalidArgument, req.Command))
	}
	if cmd.action == "" {
		return cmd.run(ctx, st, req)
	}

	var session *user.Session
	if d.opts.RequireAuth {
		session, err = d.auth.ValidateSession(ctx, st.Token)
		if err != nil {
			if errors.Is(err, apperror.ErrSessionExpired) {
				st.Token, st.Login = "", ""
			}
			return Fail(err)
		}
		if !d.auth.HasPermission(session, cmd.action) {
			d.audit.Action(ctx, session, req.Command, "permission denied", false)
			return Fail(fmt.Errorf("%w: %s may not %s", apperror.ErrForbidden, session.Role, cmd.action))
		}
	}

	resp := cmd.run(ctx, st, req)
	d.audit.Action(ctx, session, req.Command, req.Params, !resp.Failed())
	return resp
}

// Release ends the login bound to st, if any.
func (d *Dispatcher) Release(ctx context.Context, st *ConnState) {
	if st.Token == "" {
		return
	}
	if err := d.auth.Logout(ctx, st.Token); err != nil {
		logger.Warn("Failed to drop session of %s: %v", st.Login, err)
	}
	st.Token, st.Login = "", ""
}

func (d *Dispatcher) ping(ctx context.Context, st *ConnState, req Request) Response {
	return Response{Lines: []string{"PONG"}}
}

func (d *Dispatcher) quit(ctx context.Context, st *ConnState, req Request) Response {
	resp := OK("Desconectando")
	resp.Close = true
	return resp
}

func (d *Dispatcher) login(ctx context.Context, st *ConnState, req Request) Response {
	f, err := req.Fields(2)
	if err != nil {
		return Fail(err)
	}

	session, err := d.auth.Authenticate(ctx, f[0], f[1])
	if err != nil {
		return Fail(err)
	}

	d.Release(ctx, st)
	st.Token, st.Login = session.Token, session.Login
	return OK(string(session.Role), strconv.Itoa(session.UserID), session.Login)
}

func (d *Dispatcher) logout(ctx context.Context, st *ConnState, req Request) Response {
	d.Release(ctx, st)
	return OK("Sessao encerrada")
}

// Students

func (d *Dispatcher) listStudents(ctx context.Context, st *ConnState, req Request) Response {
	students, err := d.records.ListStudents(ctx, d.opts.ListLimit)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.StudentCodec{}, students))
}

func (d *Dispatcher) createStudent(ctx context.Context, st *ConnState, req Request) Response {
	s, err := studentFromParams(req)
	if err != nil {
		return Fail(err)
	}
	if err := d.records.RegisterStudent(ctx, s); err != nil {
		return Fail(err)
	}
	return OK("Aluno cadastrado com sucesso")
}

func (d *Dispatcher) findStudent(ctx context.Context, st *ConnState, req Request) Response {
	ra, err := req.Int("ra")
	if err != nil {
		return Fail(err)
	}
	s, err := d.records.GetStudent(ctx, ra)
	if err != nil {
		return Fail(err)
	}
	return OK(row(flatfile.StudentCodec{}, *s))
}

func (d *Dispatcher) updateStudent(ctx context.Context, st *ConnState, req Request) Response {
	s, err := studentFromParams(req)
	if err != nil {
		return Fail(err)
	}
	current, err := d.records.GetStudent(ctx, s.RA)
	if err != nil {
		return Fail(err)
	}
	s.Active = current.Active
	if err := d.records.UpdateStudent(ctx, s); err != nil {
		return Fail(err)
	}
	return OK("Aluno atualizado com sucesso")
}

func (d *Dispatcher) deleteStudent(ctx context.Context, st *ConnState, req Request) Response {
	ra, err := req.Int("ra")
	if err != nil {
		return Fail(err)
	}
	if err := d.records.DeleteStudent(ctx, ra); err != nil {
		return Fail(err)
	}
	return OK("Aluno desativado com sucesso")
}

func (d *Dispatcher) suggestRA(ctx context.Context, st *ConnState, req Request) Response {
	ra, err := d.records.SuggestRA(ctx)
	if err != nil {
		return Fail(err)
	}
	return OK(strconv.Itoa(ra))
}

func studentFromParams(req Request) (*academic.Student, error) {
	f, err := req.Fields(3)
	if err != nil {
		return nil, err
	}
	ra, err := parseInt("ra", f[0])
	if err != nil {
		return nil, err
	}
	return &academic.Student{RA: ra, Name: f[1], Email: f[2]}, nil
}

// Classes

func (d *Dispatcher) listClasses(ctx context.Context, st *ConnState, req Request) Response {
	classes, err := d.records.ListClasses(ctx, d.opts.ListLimit)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.ClassCodec{}, classes))
}

func (d *Dispatcher) createClass(ctx context.Context, st *ConnState, req Request) Response {
	f, err := req.Fields(4)
	if err != nil {
		return Fail(err)
	}
	class, err := classFromFields(0, f)
	if err != nil {
		return Fail(err)
	}
	id, err := d.records.CreateClass(ctx, class)
	if err != nil {
		return Fail(err)
	}
	return OK(strconv.Itoa(id), "Turma cadastrada com sucesso")
}

func (d *Dispatcher) findClass(ctx context.Context, st *ConnState, req Request) Response {
	id, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	class, err := d.records.GetClass(ctx, id)
	if err != nil {
		return Fail(err)
	}
	return OK(row(flatfile.ClassCodec{}, *class))
}

func (d *Dispatcher) updateClass(ctx context.Context, st *ConnState, req Request) Response {
	f, err := req.Fields(5)
	if err != nil {
		return Fail(err)
	}
	id, err := parseInt("id_turma", f[0])
	if err != nil {
		return Fail(err)
	}
	class, err := classFromFields(id, f[1:])
	if err != nil {
		return Fail(err)
	}
	if err := d.records.UpdateClass(ctx, class); err != nil {
		return Fail(err)
	}
	return OK("Turma atualizada com sucesso")
}

func (d *Dispatcher) deleteClass(ctx context.Context, st *ConnState, req Request) Response {
	id, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	if err := d.records.DeleteClass(ctx, id); err != nil {
		return Fail(err)
	}
	return OK("Turma excluida com sucesso")
}

// classFromFields reads nome,professor,ano,semestre.
func classFromFields(id int, f []string) (*academic.ClassSection, error) {
	year, err := parseInt("ano", f[2])
	if err != nil {
		return nil, err
	}
	term, err := parseInt("semestre", f[3])
	if err != nil {
		return nil, err
	}
	return &academic.ClassSection{ID: id, Name: f[0], Instructor: f[1], Year: year, Term: term}, nil
}

// Lessons

func (d *Dispatcher) recordLesson(ctx context.Context, st *ConnState, req Request) Response {
	f, err := req.Fields(3)
	if err != nil {
		return Fail(err)
	}
	classID, err := parseInt("id_turma", f[0])
	if err != nil {
		return Fail(err)
	}
	id, err := d.records.RecordLesson(ctx, &academic.Lesson{ClassID: classID, Date: f[1], Content: f[2]})
	if err != nil {
		return Fail(err)
	}
	return OK(strconv.Itoa(id), "Aula registrada com sucesso")
}

func (d *Dispatcher) lessonsOfClass(ctx context.Context, st *ConnState, req Request) Response {
	classID, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	lessons, err := d.records.ListLessonsByClass(ctx, classID, d.opts.ListLimit)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.LessonCodec{}, lessons))
}

func (d *Dispatcher) lessonsOnDate(ctx context.Context, st *ConnState, req Request) Response {
	lessons, err := d.records.ListLessonsByDate(ctx, strings.TrimSpace(req.Params), d.opts.ListLimit)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.LessonCodec{}, lessons))
}

func (d *Dispatcher) deleteLesson(ctx context.Context, st *ConnState, req Request) Response {
	id, err := req.Int("id_aula")
	if err != nil {
		return Fail(err)
	}
	if err := d.records.DeleteLesson(ctx, id); err != nil {
		return Fail(err)
	}
	return OK("Aula excluida com sucesso")
}

// Enrollments

func (d *Dispatcher) enrollmentParams(req Request) (int, int, error) {
	f, err := req.Fields(2)
	if err != nil {
		return 0, 0, err
	}
	ra, err := parseInt("ra", f[0])
	if err != nil {
		return 0, 0, err
	}
	classID, err := parseInt("id_turma", f[1])
	if err != nil {
		return 0, 0, err
	}
	return ra, classID, nil
}

func (d *Dispatcher) enroll(ctx context.Context, st *ConnState, req Request) Response {
	ra, classID, err := d.enrollmentParams(req)
	if err != nil {
		return Fail(err)
	}
	outcome, err := d.records.Enroll(ctx, ra, classID)
	if err != nil {
		return Fail(err)
	}
	if outcome == academic.AlreadyAssociated {
		return OK("Aluno ja associado a turma")
	}
	return OK("Aluno associado a turma com sucesso")
}

func (d *Dispatcher) unenroll(ctx context.Context, st *ConnState, req Request) Response {
	ra, classID, err := d.enrollmentParams(req)
	if err != nil {
		return Fail(err)
	}
	if err := d.records.Unenroll(ctx, ra, classID); err != nil {
		return Fail(err)
	}
	return OK("Aluno removido da turma")
}

func (d *Dispatcher) studentsOfClass(ctx context.Context, st *ConnState, req Request) Response {
	classID, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	students, err := d.records.StudentsOfClass(ctx, classID)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.StudentCodec{}, students))
}

func (d *Dispatcher) classesOfStudent(ctx context.Context, st *ConnState, req Request) Response {
	ra, err := req.Int("ra")
	if err != nil {
		return Fail(err)
	}
	classes, err := d.records.ClassesOfStudent(ctx, ra)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.ClassCodec{}, classes))
}

// Activities

func (d *Dispatcher) createActivity(ctx context.Context, st *ConnState, req Request) Response {
	// id_turma,titulo,descricao,arquivo; the path keeps any commas.
	f, err := req.Fields(4)
	if err != nil {
		return Fail(err)
	}
	classID, err := parseInt("id_turma", f[0])
	if err != nil {
		return Fail(err)
	}
	id, err := d.records.PublishActivity(ctx, &academic.Activity{
		ClassID:     classID,
		Title:       f[1],
		Description: f[2],
		FilePath:    f[3],
	})
	if err != nil {
		return Fail(err)
	}
	return OK(strconv.Itoa(id), "Atividade cadastrada com sucesso")
}

func (d *Dispatcher) activitiesOfClass(ctx context.Context, st *ConnState, req Request) Response {
	classID, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	acts, err := d.records.ListActivitiesByClass(ctx, classID, d.opts.ListLimit)
	if err != nil {
		return Fail(err)
	}
	return List(rows(flatfile.ActivityCodec{}, acts))
}

func (d *Dispatcher) deleteActivity(ctx context.Context, st *ConnState, req Request) Response {
	id, err := req.Int("id_atividade")
	if err != nil {
		return Fail(err)
	}
	if err := d.records.DeleteActivity(ctx, id); err != nil {
		return Fail(err)
	}
	return OK("Atividade excluida com sucesso")
}

// report sends the rendered class diary, one list row per report line.
func (d *Dispatcher) report(ctx context.Context, st *ConnState, req Request) Response {
	classID, err := req.Int("id_turma")
	if err != nil {
		return Fail(err)
	}
	var buf bytes.Buffer
	if _, err := d.reports.GenerateClassReport(ctx, classID, &buf); err != nil {
		return Fail(err)
	}
	return List(strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"))
}

type encoder[T any] interface {
	Encode(T) []string
}

func row[T any](c encoder[T], v T) string {
	return strings.Join(c.Encode(v), paramSep)
}

func rows[T any](c encoder[T], vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = row(c, v)
	}
	return out
}
