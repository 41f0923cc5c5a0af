package school

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/sqldump"
)

type ColumnType string

// Column types
const (
	TypeInt       ColumnType = "int"
	TypeFloat     ColumnType = "float"
	TypeBool      ColumnType = "bool"
	TypeText      ColumnType = "text"
	TypeDate      ColumnType = "date"
	TypeTimestamp ColumnType = "timestamp"
)

const (
	SchemaVersionV1 = "v1"
	CurrentVersion  = SchemaVersionV1
)

type Column struct {
	Name string     `yaml:"name" validate:"required,identifier"`
	Type ColumnType `yaml:"type" validate:"required,oneof=int float bool text date timestamp"`
}

// Table maps the positional values of a dump tuple onto named columns:
// value i goes to Columns[i].
type Table struct {
	Name    string   `yaml:"name" validate:"required,identifier"`
	Columns []Column `yaml:"columns" validate:"required,min=1,dive"`
}

// Schema lists the destination tables in insertion order (referenced tables first).
type Schema struct {
	Version string  `yaml:"version"`
	Tables  []Table `yaml:"tables" validate:"required,min=1,dive"`
}

func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		names = append(names, col.Name)
	}
	return names
}

// SerialColumn returns the name of the integer "id" column, if the table has one.
func (t Table) SerialColumn() (string, bool) {
	for _, col := range t.Columns {
		if col.Name == "id" && col.Type == TypeInt {
			return col.Name, true
		}
	}
	return "", false
}

func (s Schema) TableSet() sqldump.TableSet {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return sqldump.NewTableSet(names...)
}

// LoadSchema reads a YAML schema file. A missing version is assumed to be v1, with a warning.
func LoadSchema(path string, logger core.Logger) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, errors.Wrap(err, "reading schema file")
	}

	var schema Schema
	if err = yaml.Unmarshal(data, &schema); err != nil {
		return Schema{}, errors.Wrap(err, "parsing schema file")
	}

	switch schema.Version {
	case "":
		logger.Warn(fmt.Sprintf("schema %s: no version specified, assuming %s", path, SchemaVersionV1))
		schema.Version = SchemaVersionV1
	case SchemaVersionV1: // current
	default:
		return Schema{}, fmt.Errorf("unsupported schema version: %s (supported: %s)", schema.Version, CurrentVersion)
	}
	return schema, nil
}

func col(name string, typ ColumnType) Column { return Column{Name: name, Type: typ} }

// DefaultSchema returns the school application's schema, as created by the migrations.
func DefaultSchema() Schema {
	return Schema{
		Version: CurrentVersion,
		Tables: []Table{
			{Name: "escolas", Columns: []Column{
				col("id", TypeInt),
				col("nome", TypeText),
				col("endereco", TypeText),
				col("telefone", TypeText),
				col("email", TypeText),
				col("created_at", TypeTimestamp),
			}},
			{Name: "usuarios", Columns: []Column{
				col("id", TypeInt),
				col("nome", TypeText),
				col("email", TypeText),
				col("senha", TypeText),
				col("tipo", TypeText),
				col("escola_id", TypeInt),
				col("ativo", TypeBool),
				col("created_at", TypeTimestamp),
			}},
			{Name: "turmas", Columns: []Column{
				col("id", TypeInt),
				col("nome", TypeText),
				col("ano", TypeInt),
				col("turno", TypeText),
				col("escola_id", TypeInt),
				col("created_at", TypeTimestamp),
			}},
			{Name: "cursos", Columns: []Column{
				col("id", TypeInt),
				col("titulo", TypeText),
				col("descricao", TypeText),
				col("carga_horaria", TypeInt),
				col("preco", TypeFloat),
				col("escola_id", TypeInt),
				col("created_at", TypeTimestamp),
			}},
			{Name: "matriculas", Columns: []Column{
				col("id", TypeInt),
				col("usuario_id", TypeInt),
				col("curso_id", TypeInt),
				col("turma_id", TypeInt),
				col("data_matricula", TypeDate),
				col("status", TypeText),
				col("nota", TypeFloat),
			}},
			{Name: "aulas", Columns: []Column{
				col("id", TypeInt),
				col("curso_id", TypeInt),
				col("titulo", TypeText),
				col("descricao", TypeText),
				col("audio_url", TypeText),
				col("duracao", TypeInt),
				col("ordem", TypeInt),
				col("created_at", TypeTimestamp),
			}},
			{Name: "materiais", Columns: []Column{
				col("id", TypeInt),
				col("curso_id", TypeInt),
				col("aula_id", TypeInt),
				col("titulo", TypeText),
				col("arquivo_url", TypeText),
				col("tipo", TypeText),
				col("created_at", TypeTimestamp),
			}},
		},
	}
}
