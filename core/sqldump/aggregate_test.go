package sqldump

import (
	"reflect"
	"testing"
)

var schoolTables = NewTableSet("usuarios", "escolas", "turmas", "cursos", "matriculas", "aulas", "materiais")

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		dump string
		want map[string][][]string
	}{
		{
			name: "multi-row insert with escaped quote",
			dump: "INSERT INTO usuarios (id,nome) VALUES (1,'Ana'),(2,'Jo''ão');",
			want: map[string][][]string{"usuarios": {{"1", "Ana"}, {"2", "Jo'ão"}}},
		},
		{
			name: "unknown table is skipped",
			dump: "INSERT INTO unknown_table VALUES (1,'x');",
			want: map[string][][]string{},
		},
		{
			name: "rows accumulate across statements in source order",
			dump: "INSERT INTO cursos VALUES (1,'Go');\n" +
				"INSERT INTO escolas VALUES (1,'Central');\n" +
				"INSERT INTO cursos VALUES (2,'SQL'),(3,'Redes');",
			want: map[string][][]string{
				"cursos":  {{"1", "Go"}, {"2", "SQL"}, {"3", "Redes"}},
				"escolas": {{"1", "Central"}},
			},
		},
		{
			name: "two tuples keep their order",
			dump: "INSERT INTO turmas VALUES (1,'x'),(2,'y');",
			want: map[string][][]string{"turmas": {{"1", "x"}, {"2", "y"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.dump, schoolTables)
			got := make(map[string][][]string, len(res))
			for table, rows := range res {
				for _, row := range rows {
					got[table] = append(got[table], row.Strings())
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_nulls(t *testing.T) {
	res := Parse("INSERT INTO matriculas VALUES (1, NULL, 'NULL');", schoolTables)
	want := []Row{{Str("1"), Null(), Str("NULL")}}
	if !reflect.DeepEqual(res["matriculas"], want) {
		t.Errorf("Parse() = %#v, want %#v", res["matriculas"], want)
	}
}

func TestParse_idempotent(t *testing.T) {
	dump := "INSERT INTO aulas VALUES (1,'Intro','a.mp3'),(2,'Part, two',NULL);\nINSERT INTO foo VALUES (1);"
	first := Parse(dump, schoolTables)
	second := Parse(dump, schoolTables)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() is not idempotent: %#v != %#v", first, second)
	}
}

func TestUnknown(t *testing.T) {
	stmts := Locate("INSERT INTO zeta VALUES (1);INSERT INTO usuarios VALUES (1);INSERT INTO alpha VALUES (1);INSERT INTO zeta VALUES (2);")
	if got, want := Unknown(stmts, schoolTables), []string{"alpha", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Unknown() = %v, want %v", got, want)
	}
}

func TestNewTableSet(t *testing.T) {
	set := NewTableSet("Usuarios")
	if !set.Has("usuarios") {
		t.Error(`NewTableSet("Usuarios").Has("usuarios") = false`)
	}
	if set.Has("escolas") {
		t.Error(`NewTableSet("Usuarios").Has("escolas") = true`)
	}
}
