package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	userdomain "permit-tracker-go/internal/domain/user"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(userdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	var user userdomain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	var user userdomain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userdomain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *userdomain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return userdomain.ErrUserExists
		}
		return err
	}
	return nil
}

// UpdateProfile refreshes identity-provider fields. The role column is
// never written here.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *userdomain.User) error {
	result := r.db.WithContext(ctx).
		Model(&userdomain.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":             user.Email,
			"first_name":        user.FirstName,
			"last_name":         user.LastName,
			"profile_image_url": user.ProfileImageURL,
			"updated_at":        user.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return userdomain.ErrEmailTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return userdomain.ErrUserNotFound
	}
	return nil
}
