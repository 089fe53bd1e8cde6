package students

import "context"

type Repo interface {
	List(ctx context.Context) ([]Student, error)
	Get(ctx context.Context, id int) (*Student, error)
	Create(ctx context.Context, s Student) (*Student, error)
	Update(ctx context.Context, id int, s Student) error
	Delete(ctx context.Context, id int) error
}
