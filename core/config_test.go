package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_IMPORT_REPORTTO", "ops@escola.test")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "Escola", conf.AppName)
	assert.Equal(t, "db.internal", conf.Database.Host)
	assert.Equal(t, "db.internal:5432", conf.Database.Address())
	assert.Equal(t, "ops@escola.test", conf.Import.ReportTo)
	assert.Equal(t, "Escola", conf.FromEmail().Name)
}

func TestConfig_Validate(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	valid := Config{
		Debug:            true,
		AppName:          "Escola",
		DefaultFromEmail: "noreply@escola.test",
		Database:         DatabaseConfig{Engine: "postgres", Host: "localhost", Port: "5432", Name: "escola"},
	}
	require.NoError(t, valid.Validate(validate, translator))

	invalid := valid
	invalid.Debug = false
	invalid.AppName = ""
	invalid.DefaultFromEmail = "lol"
	invalid.Database.Port = "pg"
	invalid.Database.Name = "escola-prod"

	err := invalid.Validate(validate, translator)
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok, "got %T", err)

	got := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		got[f.Field] = f.Error
	}
	assert.Len(t, got, 5)
	assert.Equal(t, requiredText, got["Config.AppName"])
	assert.Equal(t, requiredText, got["Config.SendgridApiKey"])
	assert.Equal(t, alphaNumUnderText, got["Config.Database.Name"])
	assert.Contains(t, got, "Config.DefaultFromEmail")
	assert.Contains(t, got, "Config.Database.Port")
	assert.Contains(t, err.Error(), "invalid configuration\n  Config.")
}
