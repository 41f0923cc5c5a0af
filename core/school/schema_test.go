package school

import (
	"os"
	"path/filepath"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/tests"
)

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func writeSchema(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	return path
}

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()
	require.NoError(t, schema.Validate(newValidator()))

	set := schema.TableSet()
	for _, name := range []string{"usuarios", "escolas", "turmas", "cursos", "matriculas", "aulas", "materiais"} {
		assert.True(t, set.Has(name), name)
	}

	usuarios := schema.Tables[1]
	require.Equal(t, "usuarios", usuarios.Name)
	assert.Equal(t, "id", usuarios.ColumnNames()[0])
	serial, ok := usuarios.SerialColumn()
	assert.True(t, ok)
	assert.Equal(t, "id", serial)
}

func TestLoadSchema(t *testing.T) {
	path := writeSchema(t, `
version: v1
tables:
  - name: escolas
    columns:
      - {name: id, type: int}
      - {name: nome, type: text}
  - name: alunos
    columns:
      - {name: codigo, type: text}
      - {name: nascimento, type: date}
`)
	logger := new(testutil.Logger)
	schema, err := LoadSchema(path, logger)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(newValidator()))
	assert.Empty(t, logger.Entries)

	require.Len(t, schema.Tables, 2)
	alunos := schema.Tables[1]
	assert.Equal(t, "alunos", alunos.Name)
	assert.Equal(t, []Column{col("codigo", TypeText), col("nascimento", TypeDate)}, alunos.Columns)
	_, ok := alunos.SerialColumn()
	assert.False(t, ok)
}

func TestLoadSchema_version(t *testing.T) {
	logger := new(testutil.Logger)
	path := writeSchema(t, "tables:\n  - name: a\n    columns:\n      - {name: id, type: int}\n")
	schema, err := LoadSchema(path, logger)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersionV1, schema.Version)
	assert.Equal(t, []string{"schema " + path + ": no version specified, assuming v1"}, logger.Levels("warn"))

	_, err = LoadSchema(writeSchema(t, "version: v9\n"), logger)
	assert.EqualError(t, err, "unsupported schema version: v9 (supported: v1)")

	_, err = LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"), logger)
	assert.Error(t, err)
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name       string
		schema     Schema
		wantFields int
	}{
		{name: "no tables", schema: Schema{Version: CurrentVersion}, wantFields: 1},
		{
			name:       "bad identifier",
			schema:     Schema{Tables: []Table{{Name: "drop table;", Columns: []Column{col("id", TypeInt)}}}},
			wantFields: 1,
		},
		{
			name:       "bad type",
			schema:     Schema{Tables: []Table{{Name: "a", Columns: []Column{col("id", "uuid")}}}},
			wantFields: 1,
		},
		{
			name:       "no columns",
			schema:     Schema{Tables: []Table{{Name: "a"}}},
			wantFields: 1,
		},
		{
			name: "duplicates",
			schema: Schema{Tables: []Table{
				{Name: "a", Columns: []Column{col("id", TypeInt), col("id", TypeText)}},
				{Name: "a", Columns: []Column{col("id", TypeInt)}},
			}},
			wantFields: 2,
		},
	}
	validate, translator := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate(validate, translator)
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "error = %v", err)
			assert.Len(t, vErr.Fields, tt.wantFields)
		})
	}
}
