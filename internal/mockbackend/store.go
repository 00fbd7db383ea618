package mockbackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// Store errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// userRecord pairs the public user shape with its credential hash.
type userRecord struct {
	user model.User
	hash []byte
}

// Store is the in-memory dataset behind the mock backend: a user table
// plus a small seeded catalog. It replaces the json-server db.json of
// the original development setup.
type Store struct {
	mu      sync.RWMutex
	users   map[int64]*userRecord
	byEmail map[string]int64
	nextID  int64

	universities []model.University
	programs     []model.Program
}

// NewStore builds a store with the seed catalog and no users.
func NewStore() *Store {
	return &Store{
		users:        map[int64]*userRecord{},
		byEmail:      map[string]int64{},
		nextID:       1,
		universities: seedUniversities(),
		programs:     seedPrograms(),
	}
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Store) CreateUser(u model.User, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.byEmail[key]; exists {
		return model.User{}, ErrUserExists
	}

	u.ID = s.nextID
	s.nextID++
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.SavedPrograms == nil {
		u.SavedPrograms = []int64{}
	}
	if u.SavedUniversities == nil {
		u.SavedUniversities = []int64{}
	}

	s.users[u.ID] = &userRecord{user: u, hash: hash}
	s.byEmail[key] = u.ID
	return u, nil
}

// Authenticate verifies credentials and returns the user on success.
func (s *Store) Authenticate(email, password string) (model.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(email)]
	var rec *userRecord
	if ok {
		rec = s.users[id]
	}
	s.mu.RUnlock()

	if rec == nil {
		return model.User{}, ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword(rec.hash, []byte(password)) != nil {
		return model.User{}, ErrUserNotFound
	}
	return rec.user, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return rec.user, nil
}

// ApplyUserPatch folds a raw JSON patch into the stored user (shallow
// top-level, one nested level under profile) and returns the updated
// record.
func (s *Store) ApplyUserPatch(id int64, patch map[string]any) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}

	raw, err := json.Marshal(rec.user)
	if err != nil {
		return model.User{}, fmt.Errorf("encode stored user: %w", err)
	}
	var current map[string]any
	if err = json.Unmarshal(raw, &current); err != nil {
		return model.User{}, fmt.Errorf("decode stored user: %w", err)
	}

	for k, v := range patch {
		if k == "profile" {
			if sub, isMap := v.(map[string]any); isMap {
				base, _ := current[k].(map[string]any)
				if base == nil {
					base = map[string]any{}
				}
				for pk, pv := range sub {
					base[pk] = pv
				}
				current[k] = base
				continue
			}
		}
		current[k] = v
	}

	// Identity fields are not patchable.
	delete(current, "id")
	raw, err = json.Marshal(current)
	if err != nil {
		return model.User{}, fmt.Errorf("reencode user: %w", err)
	}
	var updated model.User
	if err = json.Unmarshal(raw, &updated); err != nil {
		return model.User{}, fmt.Errorf("decode patched user: %w", err)
	}
	updated.ID = id

	rec.user = updated
	return updated, nil
}

// SetUser replaces a stored user wholesale (transcript bookkeeping).
func (s *Store) SetUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	rec.user = u
	return nil
}

// Universities returns the seeded university catalog.
func (s *Store) Universities() []model.University {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.University{}, s.universities...)
}

// Programs returns the seeded program catalog.
func (s *Store) Programs() []model.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Program{}, s.programs...)
}

func seedUniversities() []model.University {
	return []model.University{
		{ID: 1, Name: "Université de Paris-Centre", Location: "Paris", Type: "public",
			Description: "Grande université pluridisciplinaire au coeur de Paris.", Rating: 4.3},
		{ID: 2, Name: "École Supérieure de Technologie de Lyon", Location: "Lyon", Type: "private",
			Description: "École d'ingénieurs spécialisée en informatique et systèmes embarqués.", Rating: 4.1},
		{ID: 3, Name: "Université Méditerranée", Location: "Marseille", Type: "public",
			Description: "Université réputée pour ses filières sciences et santé.", Rating: 3.9},
		{ID: 4, Name: "Institut de Gestion de Bordeaux", Location: "Bordeaux", Type: "private",
			Description: "Institut dédié au commerce, à la gestion et au management.", Rating: 4.0},
	}
}

func seedPrograms() []model.Program {
	return []model.Program{
		{ID: 1, Name: "Licence Informatique", UniversityID: 1, UniversityName: "Université de Paris-Centre",
			DegreeLevel: "licence", Duration: "3 ans", Language: "Français", TuitionFees: 170,
			Description: "Fondamentaux de l'informatique: algorithmique, systèmes, réseaux."},
		{ID: 2, Name: "Master Intelligence Artificielle", UniversityID: 1, UniversityName: "Université de Paris-Centre",
			DegreeLevel: "master", Duration: "2 ans", Language: "Français", TuitionFees: 243, Featured: true,
			Description: "Apprentissage automatique, vision, traitement du langage."},
		{ID: 3, Name: "Diplôme d'Ingénieur Systèmes Embarqués", UniversityID: 2, UniversityName: "École Supérieure de Technologie de Lyon",
			DegreeLevel: "master", Duration: "3 ans", Language: "Français", TuitionFees: 6500,
			Description: "Conception logicielle et matérielle des systèmes temps réel."},
		{ID: 4, Name: "Licence Sciences de la Vie", UniversityID: 3, UniversityName: "Université Méditerranée",
			DegreeLevel: "licence", Duration: "3 ans", Language: "Français", TuitionFees: 170,
			Description: "Biologie cellulaire, génétique et physiologie."},
		{ID: 5, Name: "Master Management International", UniversityID: 4, UniversityName: "Institut de Gestion de Bordeaux",
			DegreeLevel: "master", Duration: "2 ans", Language: "Anglais", TuitionFees: 9800, Featured: true,
			Description: "Stratégie, finance et commerce international."},
	}
}
