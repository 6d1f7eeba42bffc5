package role_test

import (
	"testing"

	"github.com/Astemirdum/bookhub/gateway/internal/role"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		user          map[string]any
		want          role.Role
		wantBorrower  bool
		wantLibrarian bool
	}{
		{
			name:         "role field with prefix",
			user:         map[string]any{"role": "ROLE_BORROWER"},
			want:         role.Borrower,
			wantBorrower: true,
		},
		{
			name:          "capitalised key",
			user:          map[string]any{"Role": "Librarian"},
			want:          role.Librarian,
			wantLibrarian: true,
		},
		{
			name:         "type alias",
			user:         map[string]any{"userType": " Borrower "},
			want:         role.Borrower,
			wantBorrower: true,
		},
		{
			name:          "nested role object",
			user:          map[string]any{"role": map[string]any{"name": "LIBRARIAN"}},
			want:          role.Librarian,
			wantLibrarian: true,
		},
		{
			name:         "roles collection",
			user:         map[string]any{"roles": []any{"user", "app-borrower"}},
			want:         role.Borrower,
			wantBorrower: true,
		},
		{
			name:         "borrower flag",
			user:         map[string]any{"name": "Ann", "isBorrower": true},
			want:         role.Borrower,
			wantBorrower: true,
		},
		{
			name:          "admin flag",
			user:          map[string]any{"name": "Ann", "isAdmin": true},
			want:          role.Librarian,
			wantLibrarian: true,
		},
		{
			name:         "serialized fallback",
			user:         map[string]any{"email": "borrower42@library.org"},
			want:         role.Borrower,
			wantBorrower: true,
		},
		{
			name: "no role information",
			user: map[string]any{"name": "Ann", "email": "ann@example.com"},
			want: role.Librarian,
		},
		{
			name: "nil record",
			user: nil,
			want: role.None,
		},
		{
			name:          "role field outranks serialized text",
			user:          map[string]any{"role": "librarian", "email": "borrower-desk@library.org"},
			want:          role.Librarian,
			wantBorrower:  true,
			wantLibrarian: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, role.Resolve(tt.user))
			require.Equal(t, tt.wantBorrower, role.IsBorrower(tt.user))
			require.Equal(t, tt.wantLibrarian, role.IsLibrarian(tt.user))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	require.Equal(t, role.Borrower, role.Parse("Borrower"))
	require.Equal(t, role.Librarian, role.Parse(" librarian"))
	require.Equal(t, role.None, role.Parse("admin"))
	require.Equal(t, "none", role.None.String())
}
