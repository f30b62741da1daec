package service

import (
	"os"
	"testing"

	"academic-records/internal/config"
	"academic-records/internal/infrastructure/repository"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	hashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(config.StorageConfig{
		DataDir:     t.TempDir(),
		Students:    config.EntityStorageConfig{File: "alunos.csv", Capacity: 100},
		Classes:     config.EntityStorageConfig{File: "turmas.csv", Capacity: 100},
		Lessons:     config.EntityStorageConfig{File: "aulas.csv", Capacity: 100},
		Enrollments: config.EntityStorageConfig{File: "aluno_turma.csv", Capacity: 100},
		Activities:  config.EntityStorageConfig{File: "atividades.csv", Capacity: 100},
		Users:       config.EntityStorageConfig{File: "usuarios.csv", Capacity: 100},
	})
}
