package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/store"
)

// User errors.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidRole         = errors.New("unknown role")
	ErrAlreadyBootstrapped = errors.New("an admin account already exists")
)

// UserService manages accounts. It is the only place user records are
// mutated, and every mutation is authorized against the access gate inside
// the same read-modify-write that applies it.
type UserService struct {
	users *store.Collection
	gate  *access.Gate
	auth  *AuthService
	pub   Publisher
	log   zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewUserService creates a new UserService.
func NewUserService(users *store.Collection, gate *access.Gate, auth *AuthService, pub Publisher, log zerolog.Logger) *UserService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &UserService{
		users: users,
		gate:  gate,
		auth:  auth,
		pub:   pub,
		log:   log.With().Str("component", "user_service").Logger(),
		now:   time.Now,
		newID: NewRecordID,
	}
}

// List returns every user, flagged with whether actor may manage it.
func (s *UserService) List(ctx context.Context, actor model.Role) ([]model.UserRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := s.users.Load(ctx)
	rows := make([]model.UserRow, len(records))
	for i, r := range records {
		u := model.UserFromRecord(r)
		rows[i] = model.UserRow{
			User:       u,
			Manageable: s.gate.CanManage(actor, u.Role),
		}
	}
	return rows, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := store.Find(s.users.Load(ctx), id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	u := model.UserFromRecord(r)
	return &u, nil
}

// GetByEmail returns the user with the given email (case-insensitive).
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, ok := findByEmail(s.users.Load(ctx), email)
	if !ok {
		return nil, ErrRecordNotFound
	}
	u := model.UserFromRecord(r)
	return &u, nil
}

// Login checks credentials and issues a token. Unknown emails, wrong
// passwords and deactivated accounts all return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.log.Warn().Str("user_id", user.ID).Msg("Login attempt on inactive account")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return token, user, nil
}

// Create adds a user holding req.Role. actor must be able to manage that role.
func (s *UserService) Create(ctx context.Context, actor model.Role, req model.CreateUserRequest) (*model.User, error) {
	role, ok := model.ParseRole(string(req.Role))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}
	if err := s.gate.Authorize(actor, role); err != nil {
		return nil, err
	}

	rec, err := s.newUserRecord(req.Name, req.Email, req.Password, role)
	if err != nil {
		return nil, err
	}

	state, err := s.users.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		if _, taken := findByEmail(cur, req.Email); taken {
			return nil, false, ErrEmailTaken
		}
		return store.Prepend(cur, rec), true, nil
	})
	if err != nil {
		return nil, err
	}

	return s.created(state, rec.ID), nil
}

// Bootstrap creates the first admin account. It refuses once any admin exists,
// so it cannot be used to bypass the gate afterwards.
func (s *UserService) Bootstrap(ctx context.Context, name, email, password string) (*model.User, error) {
	rec, err := s.newUserRecord(name, email, password, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	state, err := s.users.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		for _, r := range cur {
			if model.UserFromRecord(r).Role == model.RoleAdmin {
				return nil, false, ErrAlreadyBootstrapped
			}
		}
		if _, taken := findByEmail(cur, email); taken {
			return nil, false, ErrEmailTaken
		}
		return store.Prepend(cur, rec), true, nil
	})
	if err != nil {
		return nil, err
	}

	return s.created(state, rec.ID), nil
}

// UpdateStatus sets a user's status after checking actor may manage them.
func (s *UserService) UpdateStatus(ctx context.Context, actor model.Role, id string, status model.Status) (*model.User, error) {
	if err := s.gate.AuthorizeAny(actor); err != nil {
		return nil, err
	}
	state, err := s.users.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		target, ok := store.Find(cur, id)
		if !ok {
			return nil, false, ErrRecordNotFound
		}
		if err := s.gate.Authorize(actor, model.UserFromRecord(target).Role); err != nil {
			return nil, false, err
		}
		next, _, _ := store.Merge(cur, id, model.Payload{model.FieldStatus: string(status)})
		return next, true, nil
	})
	if err != nil {
		return nil, err
	}

	r, _ := store.Find(state, id)
	u := model.UserFromRecord(r)
	s.log.Info().Str("user_id", id).Str("status", string(status)).Str("actor_role", string(actor)).Msg("User status updated")
	s.publish(model.ChangeUpdated, id)
	return &u, nil
}

// Delete removes a user after checking actor may manage them.
// Deleting an unknown id is a no-op for roles that manage anyone.
func (s *UserService) Delete(ctx context.Context, actor model.Role, id string) error {
	if err := s.gate.AuthorizeAny(actor); err != nil {
		return err
	}
	removed := false
	_, err := s.users.Mutate(ctx, func(cur []model.Record) ([]model.Record, bool, error) {
		target, ok := store.Find(cur, id)
		if !ok {
			return cur, false, nil
		}
		if err := s.gate.Authorize(actor, model.UserFromRecord(target).Role); err != nil {
			return nil, false, err
		}
		next, _ := store.Remove(cur, id)
		removed = true
		return next, true, nil
	})
	if err != nil {
		return err
	}

	if removed {
		s.log.Info().Str("user_id", id).Str("actor_role", string(actor)).Msg("User deleted")
		s.publish(model.ChangeDeleted, id)
	}
	return nil
}

func (s *UserService) newUserRecord(name, email, password string, role model.Role) (model.Record, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return model.Record{}, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         role,
		PasswordHash: hash,
	}
	return model.Record{
		ID:          s.newID(),
		DateCreated: s.now().UTC(),
		Status:      model.StatusActive,
		Fields:      u.Payload(),
	}, nil
}

func (s *UserService) created(state []model.Record, id string) *model.User {
	r, _ := store.Find(state, id)
	u := model.UserFromRecord(r)
	s.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("User created")
	s.publish(model.ChangeCreated, u.ID)
	return &u
}

func (s *UserService) publish(action model.ChangeAction, id string) {
	s.pub.Publish(model.ChangeEvent{
		Collection: s.users.Key(),
		Action:     action,
		RecordID:   id,
		At:         s.now().UTC(),
	})
}

func findByEmail(records []model.Record, email string) (model.Record, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, r := range records {
		if strings.EqualFold(r.String(model.UserFieldEmail), email) {
			return r, true
		}
	}
	return model.Record{}, false
}
