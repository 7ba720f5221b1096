package users

import (
	"context"

	"querymap/internal/descriptor"
	"querymap/internal/intercept"
)

const (
	TypeName = "users.User"
	ListOp   = "users.list"
)

// User is one row of USERS_MASTER.
type User struct {
	UserName string `column:"USER_NAME" json:"USERNAME"`
	Email    string `column:"USER_EMAIL" json:"EMAIL"`
}

func Register(c *descriptor.Catalog) error {
	return descriptor.RegisterType[User](c, TypeName)
}

type Service struct {
	listUsers func(ctx context.Context, args ...any) ([]User, error)
}

// NewService binds the service's operations to engine. It fails when the
// registry has no descriptor for them or maps them to another type.
func NewService(engine *intercept.Engine) (*Service, error) {
	list, err := intercept.Bind[User](engine, ListOp)
	if err != nil {
		return nil, err
	}
	return &Service{listUsers: list}, nil
}

// ListUsers returns every user the users.list query yields. id is passed
// along with the call but does not change the query.
func (s *Service) ListUsers(ctx context.Context, id int) ([]User, error) {
	return s.listUsers(ctx, id)
}
