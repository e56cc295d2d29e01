package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/pkg/bind"
)

type statusInput struct {
	Status string `json:"status" validate:"required,in=Pending,Processing,Shipped,Delivered,Cancelled"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestJSON_Valid(t *testing.T) {
	var in statusInput
	errs, err := bind.JSON(post(`{"status":"Shipped"}`), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Shipped", in.Status)
}

func TestJSON_ValidationErrors(t *testing.T) {
	var in statusInput
	errs, err := bind.JSON(post(`{"status":"Lost"}`), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "status")
}

func TestJSON_Malformed(t *testing.T) {
	var in statusInput
	_, err := bind.JSON(post(`{"status":`), &in)
	assert.Error(t, err)
}

func TestJSON_Empty(t *testing.T) {
	var in statusInput
	_, err := bind.JSON(post(``), &in)
	assert.ErrorIs(t, err, bind.ErrEmptyBody)
}
