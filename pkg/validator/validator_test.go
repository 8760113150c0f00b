package validator_test

import (
	"errors"
	"testing"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/pnscred/pkg/validator"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestValidate_TranslatedMessage(t *testing.T) {
	in := struct {
		ClientID string `validate:"required"`
		Platform string `validate:"oneof=gcm"`
	}{
		Platform: "apns",
	}

	err := validator.Validate(in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ClientID is a required field")
	assert.Contains(t, err.Error(), "Platform must be one of [gcm]")

	var fieldErrs goValidator.ValidationErrors
	assert.True(t, errors.As(err, &fieldErrs))
	assert.Len(t, fieldErrs, 2)
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, validator.Validate(nil))
}

func TestVar(t *testing.T) {
	assert.NoError(t, validator.Var("main", "required,alphanum"))
	assert.Error(t, validator.Var("", "required"))
}
