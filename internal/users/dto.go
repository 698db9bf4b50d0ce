package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/nmoreau/gatherly-backend/pkg/db/models"
)

// CreateUserDTO captures the fields needed to materialize a first-sight user.
type CreateUserDTO struct {
	Email     string
	Name      string
	AvatarURL *string
}

// ToModel converts the DTO into the persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Email:     d.Email,
		Name:      d.Name,
		AvatarURL: d.AvatarURL,
	}
}

// UserDTO is the transport shape for a user profile.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: copyStringPointer(u.AvatarURL),
		CreatedAt: u.CreatedAt,
	}
}

func copyStringPointer(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
