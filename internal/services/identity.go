package services

import (
	"errors"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// Caller is the authenticated identity an operation runs as. It is
// resolved once per request from the identity record and passed
// explicitly into every engine operation; no service reads a global
// "current user".
type Caller struct {
	ID    uint
	Email string
	Name  string
}

// IdentityService resolves authenticated user ids into Caller snapshots.
type IdentityService struct {
	db *gorm.DB
}

func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// Resolve looks up the identity record behind an authenticated user id.
// The snapshot is request-scoped and never cached across operations.
func (s *IdentityService) Resolve(userID uint) (*Caller, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, NewAuthorizationError("account is disabled")
	}

	name := user.Name
	if name == "" {
		name = user.Email
	}

	return &Caller{ID: user.ID, Email: user.Email, Name: name}, nil
}
