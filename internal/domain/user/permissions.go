package user

// Action names a permission checked before a command runs
type Action string

const (
	ActionManageUsers      Action = "GERENCIAR_USUARIOS"
	ActionCreateStudent    Action = "CADASTRAR_ALUNO"
	ActionEditStudent      Action = "EDITAR_ALUNO"
	ActionDeleteStudent    Action = "EXCLUIR_ALUNO"
	ActionCreateClass      Action = "CADASTRAR_TURMA"
	ActionEditClass        Action = "EDITAR_TURMA"
	ActionDeleteClass      Action = "EXCLUIR_TURMA"
	ActionEnroll           Action = "ASSOCIAR_ALUNO"
	ActionRecordLesson     Action = "REGISTRAR_AULA"
	ActionUploadActivity   Action = "UPLOAD_ATIVIDADE"
	ActionViewStudents     Action = "VISUALIZAR_ALUNOS"
	ActionGenerateReport   Action = "GERAR_RELATORIO"
	ActionViewClasses      Action = "CONSULTAR_TURMAS"
	ActionViewLessons      Action = "CONSULTAR_AULAS"
	ActionDownloadActivity Action = "BAIXAR_ATIVIDADE"
	ActionViewGrades       Action = "VISUALIZAR_NOTAS"
)

var rolePermissions = map[Role]map[Action]bool{
	RoleProfessor: {
		ActionCreateClass:      true,
		ActionEditClass:        true,
		ActionRecordLesson:     true,
		ActionUploadActivity:   true,
		ActionViewStudents:     true,
		ActionGenerateReport:   true,
		ActionViewClasses:      true,
		ActionViewLessons:      true,
		ActionDownloadActivity: true,
	},
	RoleStudent: {
		ActionViewClasses:      true,
		ActionViewLessons:      true,
		ActionDownloadActivity: true,
		ActionViewGrades:       true,
	},
}

// Can reports whether the role may perform action. ADMIN may do anything.
func (r Role) Can(action Action) bool {
	if r == RoleAdmin {
		return true
	}
	return rolePermissions[r][action]
}
