package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func newGuardedRequest(role domain.Role, sub string, target *domain.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/users/42/shifts", nil)
	ctx := context.WithValue(r.Context(), RoleCtxKey, string(role))
	ctx = context.WithValue(ctx, SubCtxKey, sub)
	ctx = context.WithValue(ctx, UserInfoCtx, target)
	return r.WithContext(ctx)
}

func TestSelfOrSchedulerOnly(t *testing.T) {
	h := &Handler{}
	target := &domain.User{ID: 42}

	tests := []struct {
		name    string
		role    domain.Role
		sub     string
		allowed bool
	}{
		{"员工查看自己", domain.RoleEmployee, "42", true},
		{"员工查看他人", domain.RoleEmployee, "7", false},
		{"排班管理员查看他人", domain.RoleScheduler, "7", true},
		{"管理员查看他人", domain.RoleAdmin, "7", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			rec := httptest.NewRecorder()
			h.selfOrSchedulerOnly(next).ServeHTTP(rec, newGuardedRequest(tt.role, tt.sub, target))

			assert.Equal(t, tt.allowed, nextCalled)
			if !tt.allowed {
				resp := Response{}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.False(t, resp.Success)
				assert.Equal(t, "权限不足", resp.Message)
			}
		})
	}
}
