package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gosuda/techtransfer/internal/domain"
)

// UserRepo adds the user lookups to Repo.
type UserRepo struct {
	*Repo[*domain.User]
}

func NewUserRepo() *UserRepo {
	return &UserRepo{Repo: NewRepo(CloneUser)}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return fmt.Errorf("memory.UserRepo.Create: email taken: %w", domain.ErrConflict)
	}
	return r.Repo.Create(ctx, u)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.All() {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("memory.UserRepo.GetByEmail: %w", domain.ErrNotFound)
}

// List orders users by name.
func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*domain.User, error) {
	users := r.All()
	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(a.Name, b.Name)
	})
	return page(users, limit, offset), nil
}
