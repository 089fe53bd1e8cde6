package students

import (
	"context"
	"sort"
	"sync"

	relayerrors "github.com/jrsteele09/go-auth-relay/internal/errors"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps students in process memory. IDs are assigned sequentially and never reused.
type InMemoryRepo struct {
	lock     sync.RWMutex
	students map[int]Student
	nextID   int
}

func NewInMemoryRepo(seed ...Student) *InMemoryRepo {
	r := &InMemoryRepo{
		students: make(map[int]Student),
		nextID:   1,
	}
	for _, s := range seed {
		if s.ID == 0 {
			s.ID = r.nextID
		}
		r.students[s.ID] = s
		if s.ID >= r.nextID {
			r.nextID = s.ID + 1
		}
	}
	return r
}

// SeedStudents is the initial roster.
func SeedStudents() []Student {
	return []Student{
		{ID: 1, Name: "Hoàng Ngọc Vương", Age: 22, Gender: GenderMale},
		{ID: 2, Name: "Hoàng Nguyên Phúc", Age: 22, Gender: GenderMale},
		{ID: 3, Name: "Nguyễn Thu Ngọc", Age: 22, Gender: GenderFemale},
	}
}

// List returns every student ordered by ID.
func (r *InMemoryRepo) List(_ context.Context) ([]Student, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]Student, 0, len(r.students))
	for _, s := range r.students {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *InMemoryRepo) Get(_ context.Context, id int) (*Student, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s, ok := r.students[id]
	if !ok {
		return nil, relayerrors.ErrNotFound
	}
	return &s, nil
}

func (r *InMemoryRepo) Create(_ context.Context, s Student) (*Student, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	s.ID = r.nextID
	r.nextID++
	r.students[s.ID] = s

	log.Debug().Int("id", s.ID).Msg("student created")
	return &s, nil
}

func (r *InMemoryRepo) Update(_ context.Context, id int, s Student) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.students[id]; !ok {
		return relayerrors.ErrNotFound
	}
	s.ID = id
	r.students[id] = s

	log.Debug().Int("id", id).Msg("student updated")
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.students[id]; !ok {
		return relayerrors.ErrNotFound
	}
	delete(r.students, id)

	log.Debug().Int("id", id).Msg("student deleted")
	return nil
}
