package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"
	"hostel-complaint-api/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// RegisterInput is the student self-registration payload.
type RegisterInput struct {
	University string  `json:"university" binding:"required"`
	FullName   string  `json:"fullName" binding:"required,max=100"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required"`
	Hostel     string  `json:"hostel" binding:"required,hostel"`
	RoomNumber string  `json:"roomNumber" binding:"required,max=32"`
	RollNumber *string `json:"rollNumber"`
}

type AccountService struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewAccountService(db *gorm.DB) *AccountService {
	if db == nil {
		db = config.DB
	}
	return &AccountService{db: db, validate: newInputValidator()}
}

// Register creates a student account after applying the registration rules.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.University = utils.SanitizeInput(in.University)
	in.FullName = utils.SanitizeInput(in.FullName)
	in.Email = strings.ToLower(utils.SanitizeInput(in.Email))
	in.RoomNumber = utils.SanitizeInput(in.RoomNumber)
	in.Hostel = utils.SanitizeInput(in.Hostel)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	if !utils.ValidateEmail(in.Email) {
		return nil, newValidationError("email", "must be a valid email address")
	}
	if ok, msg := utils.ValidatePassword(in.Password); !ok {
		return nil, &ValidationError{Field: "password", Message: msg}
	}

	var rollNumber *string
	if in.University == models.ThaparUniversity {
		if in.RollNumber == nil || strings.TrimSpace(*in.RollNumber) == "" {
			return nil, &ValidationError{Field: "rollNumber", Message: "Roll number is required for Thapar University students"}
		}
		roll := strings.TrimSpace(*in.RollNumber)
		if !utils.ValidateRollNumber(roll) {
			return nil, &ValidationError{Field: "rollNumber", Message: "Roll number must be exactly 9 digits"}
		}
		rollNumber = &roll
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, dependencyError("check email", err)
	}
	if count > 0 {
		return nil, &ValidationError{Field: "email", Message: "User with this email already exists"}
	}
	if rollNumber != nil {
		if err := db.Model(&models.User{}).Where("roll_number = ?", *rollNumber).Count(&count).Error; err != nil {
			return nil, dependencyError("check roll number", err)
		}
		if count > 0 {
			return nil, &ValidationError{Field: "rollNumber", Message: "This roll number is already registered."}
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserID:     uuid.NewString(),
		FullName:   in.FullName,
		Email:      in.Email,
		Password:   hash,
		University: in.University,
		RollNumber: rollNumber,
		Hostel:     in.Hostel,
		RoomNumber: in.RoomNumber,
		Role:       models.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, dependencyError("create user", err)
	}
	log.Printf("[auth] registered student %s", user.Email)
	return user, nil
}

// Authenticate returns the user for valid credentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, dependencyError("load user", err)
	}
	if !CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SeedAdmin creates the first admin account when none exists. It reports whether one was created.
func (s *AccountService) SeedAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, newValidationError("admin", "ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return false, dependencyError("count admins", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if fullName == "" {
		fullName = "Administrator"
	}
	admin := &models.User{
		UserID:   uuid.NewString(),
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, dependencyError("create admin", err)
	}
	log.Printf("[auth] seeded admin %s", email)
	return true, nil
}

// ResetPassword re-hashes and stores a new password for the account with email.
func (s *AccountService) ResetPassword(ctx context.Context, email, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Updates(map[string]interface{}{"password": hash, "updated_at": time.Now()})
	if res.Error != nil {
		return dependencyError("reset password", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HashPassword hashes password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares password with hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
