// Package transport holds request bodies and their validation. A Validate
// method either returns the cleaned input or an apperr validation error,
// so nothing downstream sees unchecked fields.
package transport

import (
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/models"
)

const (
	MinPasswordLen = 8
	// bcrypt ignores input beyond 72 bytes.
	MaxPasswordLen = 72
)

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	FullName string `json:"fullName" form:"fullName"`
	Password string `json:"password" form:"password"`
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

func (r RegisterRequest) Validate() (RegisterInput, error) {
	in := RegisterInput{
		Username: canonical(r.Username),
		Email:    canonical(r.Email),
		FullName: strings.TrimSpace(r.FullName),
		Password: r.Password,
	}
	if in.Username == "" || in.Email == "" || in.FullName == "" || strings.TrimSpace(in.Password) == "" {
		return RegisterInput{}, apperr.Validation("all fields are required")
	}
	if err := checkEmail(in.Email); err != nil {
		return RegisterInput{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return RegisterInput{}, err
	}
	return in, nil
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

func (r LoginRequest) Validate() (LoginInput, error) {
	in := LoginInput{
		Username: canonical(r.Username),
		Email:    canonical(r.Email),
		Password: r.Password,
	}
	if in.Username == "" && in.Email == "" {
		return LoginInput{}, apperr.Validation("username or email is required")
	}
	if in.Password == "" {
		return LoginInput{}, apperr.Validation("password is required")
	}
	return in, nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"oldPassword" form:"oldPassword"`
	NewPassword        string `json:"newPassword" form:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" form:"confirmNewPassword"`
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

func (r ChangePasswordRequest) Validate() (ChangePasswordInput, error) {
	if r.OldPassword == "" || r.NewPassword == "" {
		return ChangePasswordInput{}, apperr.Validation("old and new password are required")
	}
	if r.NewPassword != r.ConfirmNewPassword {
		return ChangePasswordInput{}, apperr.Validation("new password and confirm password must match")
	}
	if err := checkPassword(r.NewPassword); err != nil {
		return ChangePasswordInput{}, err
	}
	return ChangePasswordInput{OldPassword: r.OldPassword, NewPassword: r.NewPassword}, nil
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
}

type UpdateAccountInput struct {
	FullName string
	Email    string
}

func (r UpdateAccountRequest) Validate() (UpdateAccountInput, error) {
	in := UpdateAccountInput{
		FullName: strings.TrimSpace(r.FullName),
		Email:    canonical(r.Email),
	}
	if in.FullName == "" || in.Email == "" {
		return UpdateAccountInput{}, apperr.Validation("fullName and email are required")
	}
	if err := checkEmail(in.Email); err != nil {
		return UpdateAccountInput{}, err
	}
	return in, nil
}

type CommentRequest struct {
	Content string `json:"content" form:"content"`
}

type CommentInput struct {
	Content     string
	ParentModel models.ParentModel
}

func (r CommentRequest) Validate(parentModel string) (CommentInput, error) {
	model, err := ParseParentModel(parentModel)
	if err != nil {
		return CommentInput{}, err
	}
	content := strings.TrimSpace(r.Content)
	if content == "" {
		return CommentInput{}, apperr.Validation("content is required")
	}
	return CommentInput{Content: content, ParentModel: model}, nil
}

func ParseParentModel(s string) (models.ParentModel, error) {
	m := models.ParentModel(s)
	if !m.Valid() {
		return "", apperr.Validation("unknown parent model " + s)
	}
	return m, nil
}

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

var imageExts = map[string]bool{
	".png":  true,
	".jpeg": true,
	".jpg":  true,
}

// CheckImage accepts png and jpeg uploads by content type or, when the
// client sent none, by file extension.
func CheckImage(filename, contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		if imageTypes[ct] {
			return nil
		}
		return apperr.Validation("only png and jpeg images are allowed")
	}
	if imageExts[strings.ToLower(filepath.Ext(filename))] {
		return nil
	}
	return apperr.Validation("only png and jpeg images are allowed")
}

func canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Validation("invalid email")
	}
	return nil
}

func checkPassword(pw string) error {
	if len(pw) < MinPasswordLen {
		return apperr.Validation("password must be at least 8 characters")
	}
	if len(pw) > MaxPasswordLen {
		return apperr.Validation("password must be at most 72 bytes")
	}
	return nil
}
