package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		stored string
		want   Role
	}{
		{"admin", RoleAdmin},
		{" Admin ", RoleAdmin},
		{"1", RoleAdmin},
		{"user", RoleUser},
		{"0", RoleUser},
		{"", RoleUser},
		{"merchant", RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.stored))
		})
	}
}

func TestRole_Grants(t *testing.T) {
	assert.Equal(t, []string{"user", "admin"}, RoleAdmin.Grants().ToStrings())
	assert.Equal(t, []string{"user"}, RoleUser.Grants().ToStrings())

	u := &User{Role: RoleAdmin}
	assert.True(t, u.IsAdmin())
	assert.Equal(t, Roles{RoleUser, RoleAdmin}, u.Roles())
}
