package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"canedu/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorUsesJSONNames(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.validate.Struct(models.StageResult{Correct: 5, Total: 3})
	var fieldErrs validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "correct", fieldErrs[0].Field())
}

func TestValidatorValidate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(models.StageResult{Correct: 3, Total: 5}))
	assert.Error(t, v.Validate(models.StageResult{Correct: 0, Total: 0}))
	assert.Error(t, v.Validate(models.AnswerRecord{Type: "science"}))
	assert.NoError(t, v.Validate(models.AnswerRecord{Type: models.DomainNumeracy, Correct: true}))
}

func TestBindValid(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	e := echo.New()
	e.Validator = v

	newContext := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return e.NewContext(req, httptest.NewRecorder())
	}

	var ok models.StageAnswer
	require.NoError(t, bindValid(newContext(`{"choice":"cat"}`), &ok))
	assert.Equal(t, "cat", ok.Choice)

	var missing models.StageAnswer
	assert.Error(t, bindValid(newContext(`{}`), &missing))

	var broken models.StageAnswer
	assert.Error(t, bindValid(newContext(`{"choice":`), &broken))
}
