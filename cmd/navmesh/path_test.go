package main

import (
	"testing"

	"github.com/gorustyt/gonavmesh/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVec3(t *testing.T) {
	v, err := parseVec3("1, 2.5,-3")
	require.NoError(t, err)
	assert.Equal(t, common.Vec3{1, 2.5, -3}, v)

	_, err = parseVec3("1,2")
	assert.Error(t, err)
	_, err = parseVec3("1,x,3")
	assert.Error(t, err)
}
