package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisibility(t *testing.T) {
	v, err := ParseVisibility("public")
	require.NoError(t, err)
	assert.Equal(t, VisibilityPublic, v)

	v, err = ParseVisibility("owner_only")
	require.NoError(t, err)
	assert.Equal(t, VisibilityOwnerOnly, v)

	_, err = ParseVisibility("private")
	assert.Error(t, err)

	assert.Equal(t, "visibility(4)", Visibility(4).String())
}

func TestCreatePostRequestPrefersVisibility(t *testing.T) {
	var req CreatePostRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","content":"c","user_id":1,"private":1,"visibility":"owner_only"}`), &req))
	require.NoError(t, req.validate())

	v, err := req.visibility()
	require.NoError(t, err)
	assert.Equal(t, VisibilityOwnerOnly, v)
}

func TestRequireFieldsListsEveryMissingField(t *testing.T) {
	err := CreateUserRequest{}.validate()
	require.Error(t, err)
	assert.Equal(t, "Missing required field(s): username, email, password", err.Error())

	name := "x"
	assert.NoError(t, UpdateUserRequest{Username: &name, Email: &name}.validate())
}
