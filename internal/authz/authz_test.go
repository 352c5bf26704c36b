package authz

import (
	"testing"

	"github.com/gokulstevee/appsync-rbac-lambda/internal/models"
	"github.com/stretchr/testify/require"
)

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		id   *models.Identity
		want bool
	}{
		{name: "nil identity", id: nil, want: false},
		{name: "no claims", id: &models.Identity{Sub: "u1"}, want: false},
		{name: "no group claim", id: &models.Identity{Sub: "u1", Claims: map[string]interface{}{"email": "x@y.z"}}, want: false},
		{name: "other groups only", id: &models.Identity{Claims: map[string]interface{}{models.GroupsClaim: []interface{}{"editor", "Admin"}}}, want: false},
		{name: "admin member", id: &models.Identity{Claims: map[string]interface{}{models.GroupsClaim: []interface{}{"editor", "admin"}}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsAdmin(tt.id))
		})
	}
}
