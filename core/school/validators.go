package school

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/escola/core"
)

var (
	identifierTag   = "identifier"
	identifierText  = "must be a lower-case SQL identifier"
	identifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

	uniqueTableTag  = "uniquetable"
	uniqueTableText = "duplicate table name"

	uniqueColumnTag  = "uniquecolumn"
	uniqueColumnText = "duplicate column name"
)

// InitValidators registers the schema validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(identifierTag, identifierValidation)
	core.RegisterCustomTranslation(validate, translator, identifierTag, identifierText)

	validate.RegisterStructValidation(schemaStructValidation, Schema{})
	core.RegisterCustomTranslation(validate, translator, uniqueTableTag, uniqueTableText)
	core.RegisterCustomTranslation(validate, translator, uniqueColumnTag, uniqueColumnText)
}

// Validate checks table and column names, column types and duplicates.
// Names are interpolated into SQL, hence the identifier rule.
func (s Schema) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.ValidateStruct(validate, translator, s, "invalid schema")
}

// identifierValidation only allows lower-case SQL identifiers.
func identifierValidation(fl validator.FieldLevel) bool {
	return identifierRegex.MatchString(fl.Field().String())
}

// schemaStructValidation reports duplicate tables and duplicate columns within a table.
func schemaStructValidation(sl validator.StructLevel) {
	schema, ok := sl.Current().Interface().(Schema)
	if !ok {
		return
	}
	tables := make(map[string]bool, len(schema.Tables))
	for i, t := range schema.Tables {
		idx := "[" + strconv.Itoa(i) + "]"
		if tables[t.Name] {
			sl.ReportError(t.Name, "tables"+idx+".name", "Tables"+idx+".Name", uniqueTableTag, "")
		}
		tables[t.Name] = true

		columns := make(map[string]bool, len(t.Columns))
		for j, c := range t.Columns {
			if columns[c.Name] {
				cidx := "[" + strconv.Itoa(j) + "]"
				sl.ReportError(c.Name, "tables"+idx+".columns"+cidx+".name", "Tables"+idx+".Columns"+cidx+".Name", uniqueColumnTag, "")
			}
			columns[c.Name] = true
		}
	}
}
