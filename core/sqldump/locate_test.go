package sqldump

import (
	"reflect"
	"testing"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name string
		dump string
		want []Statement
	}{
		{
			name: "single statement",
			dump: "INSERT INTO usuarios VALUES (1,'Ana');",
			want: []Statement{{Table: "usuarios", Values: "(1,'Ana')"}},
		},
		{
			name: "column list, backticks and lower-case keywords",
			dump: "insert into `Usuarios` (`id`,`nome`) values (1,'a');",
			want: []Statement{{Table: "usuarios", Values: "(1,'a')"}},
		},
		{
			name: "no space before column list",
			dump: "INSERT INTO turmas(id,nome) VALUES (1,'3A');",
			want: []Statement{{Table: "turmas", Values: "(1,'3A')"}},
		},
		{
			name: "schema qualified and double quoted",
			dump: `INSERT INTO public."Cursos" VALUES (1);`,
			want: []Statement{{Table: "cursos", Values: "(1)"}},
		},
		{
			name: "semicolon inside a quoted value",
			dump: "INSERT INTO materiais VALUES (1,'a;b');INSERT INTO aulas VALUES (2);",
			want: []Statement{
				{Table: "materiais", Values: "(1,'a;b')"},
				{Table: "aulas", Values: "(2)"},
			},
		},
		{
			name: "statement inside a quoted value is not matched",
			dump: "INSERT INTO materiais VALUES (1,'INSERT INTO x VALUES (2);');",
			want: []Statement{{Table: "materiais", Values: "(1,'INSERT INTO x VALUES (2);')"}},
		},
		{
			name: "missing final semicolon",
			dump: "INSERT INTO turmas VALUES (1)",
			want: []Statement{{Table: "turmas", Values: "(1)"}},
		},
		{
			name: "multi-line statement",
			dump: "-- escolas\nINSERT INTO escolas\n  VALUES\n  (1,'A'),\n  (2,'B');\n",
			want: []Statement{{Table: "escolas", Values: "(1,'A'),\n  (2,'B')"}},
		},
		{
			name: "statements inside comments are not matched",
			dump: "-- INSERT INTO usuarios VALUES (9);\n/* INSERT INTO cursos VALUES (8); */\nSELECT 1;",
			want: nil,
		},
		{
			name: "quote inside a comment does not hide the next statement",
			dump: "-- it's the data\n/* don't */INSERT INTO aulas VALUES (1);",
			want: []Statement{{Table: "aulas", Values: "(1)"}},
		},
		{
			name: "unterminated block comment",
			dump: "/* INSERT INTO aulas VALUES (1);",
			want: nil,
		},
		{
			name: "backslash escape swallows the rest of the clause",
			dump: `INSERT INTO usuarios VALUES (1,'O\'Neil');INSERT INTO aulas VALUES (2);`,
			want: []Statement{{Table: "usuarios", Values: `(1,'O\'Neil');INSERT INTO aulas VALUES (2);`}},
		},
		{
			name: "other statements are ignored",
			dump: "CREATE TABLE x (id int);\nSELECT 1;",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(tt.dump); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Locate() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
