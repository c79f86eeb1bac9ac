package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Code  string `json:"code" validate:"required,min=2"`
	Level int    `json:"level" validate:"required,min=1,max=4"`
}

func decode(body string, allowEmpty bool) (sampleRequest, error) {
	var req sampleRequest
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSON(httptest.NewRecorder(), r, &req, allowEmpty)
	return req, err
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	req, err := decode(`{"code":"sq","level":2}`, false)
	require.NoError(t, err)
	assert.Equal(t, sampleRequest{Code: "sq", Level: 2}, req)

	_, err = decode(`{"code":"sq","unknown":true}`, false)
	assert.Error(t, err)

	_, err = decode(`{"code":`, false)
	assert.Error(t, err)

	_, err = decode(``, false)
	assert.Error(t, err)

	req, err = decode(``, true)
	require.NoError(t, err)
	assert.Zero(t, req)
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(sampleRequest{Code: "sq", Level: 1}))
	assert.Error(t, ValidateRequest(sampleRequest{Code: "s", Level: 1}))
	assert.Error(t, ValidateRequest(sampleRequest{Code: "sq", Level: 5}))
	assert.Error(t, ValidateRequest(sampleRequest{}))
}
