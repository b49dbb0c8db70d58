package repository

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/model"
)

// FileSubscriberRepository keeps the subscriber list in a single JSON array
// on disk, matching the flat-file deployments of the original site. A
// repository-wide mutex serializes every load-mutate-save cycle so two
// concurrent submissions for the same email cannot lose each other's write.
type FileSubscriberRepository struct {
	Path string
	mu   sync.Mutex
}

func NewFileSubscriberRepository(path string) *FileSubscriberRepository {
	return &FileSubscriberRepository{Path: path}
}

func (r *FileSubscriberRepository) FindByEmail(email string) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if strings.EqualFold(subs[i].Email, email) {
			s := subs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (r *FileSubscriberRepository) FindByToken(token string) (*model.Subscriber, error) {
	if token == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ConfirmToken == token {
			s := subs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (r *FileSubscriberRepository) Insert(s *model.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	maxID := 0
	for i := range subs {
		if strings.EqualFold(subs[i].Email, s.Email) {
			return appErrors.NewDuplicateEmail(s.Email)
		}
		if subs[i].ID > maxID {
			maxID = subs[i].ID
		}
	}
	s.ID = maxID + 1
	return r.save(append(subs, *s))
}

func (r *FileSubscriberRepository) Update(s *model.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.load()
	if err != nil {
		return err
	}
	for i := range subs {
		if subs[i].ID == s.ID {
			subs[i] = *s
			return r.save(subs)
		}
	}
	return appErrors.NewSubscriberNotFound(s.Email)
}

func (r *FileSubscriberRepository) ListAll() ([]model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// load re-reads the file on every operation, so a failed save leaves no
// in-memory state behind.
func (r *FileSubscriberRepository) load() ([]model.Subscriber, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Subscriber{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []model.Subscriber{}, nil
	}
	var subs []model.Subscriber
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// save writes to a temp file first so a failed write cannot truncate the
// existing list.
func (r *FileSubscriberRepository) save(subs []model.Subscriber) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path)
}

var _ SubscriberRepositoryInterface = (*FileSubscriberRepository)(nil)
