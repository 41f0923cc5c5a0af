package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/trezcool/escola/core"
)

// SampleDump holds a few rows of every school table plus a table the schema does not know.
const SampleDump = `-- MySQL dump 10.13
SET NAMES utf8mb4;

INSERT INTO ` + "`escolas`" + ` VALUES (1,'Escola Central','Rua A, 10','+244 900 000 000','central@escola.test','2023-01-05 10:00:00');
INSERT INTO usuarios (id, nome, email, senha, tipo, escola_id, ativo, created_at) VALUES
  (1,'Ana','ana@escola.test',NULL,'admin',1,1,'2023-01-05 10:00:00'),
  (2,'Rui O''Neil','rui@escola.test',NULL,'professor',1,1,'2023-01-05 10:00:00'),
  (3,'Eva','eva@escola.test',NULL,'aluno',NULL,0,'0000-00-00 00:00:00');
INSERT INTO turmas VALUES (1,'Turma A',2023,'manha',1,NULL);
INSERT INTO cursos VALUES (1,'Matematica (basica)','Numeros; operacoes',40,99.90,1,NULL),(2,'Fisica','',20,NULL,1,NULL);
INSERT INTO matriculas VALUES (1,3,1,1,'2023-02-01','ativa',NULL);
INSERT INTO aulas VALUES (1,1,'Aula 1','Introducao','https://cdn.test/a1.mp3',600,1,NULL);
INSERT INTO materiais VALUES (1,1,1,'Apostila','https://cdn.test/m1.pdf','pdf',NULL);
INSERT INTO logs VALUES (1,'ignored');
`

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger recording every entry.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

// Levels returns the messages logged at level.
func (l *Logger) Levels(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var msgs []string
	for _, e := range l.Entries {
		if e.Level == level {
			msgs = append(msgs, e.Msg)
		}
	}
	return msgs
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// WriteFile writes content to a file in a temporary directory and returns its path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

type rowInserter interface {
	InsertRow(ctx context.Context, table string, columns []string, args []interface{}) error
}

// CreateUser inserts a usuarios row.
func CreateUser(t *testing.T, repo rowInserter, id int64, name, email string) {
	t.Helper()
	err := repo.InsertRow(
		context.Background(),
		"usuarios",
		[]string{"id", "nome", "email", "senha", "tipo", "ativo"},
		[]interface{}{id, name, email, nil, "aluno", true},
	)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
}
