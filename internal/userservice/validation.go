package userservice

import (
	"regexp"

	"github.com/sushihentaime/blogapi/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(v *common.Validator, name, field string) {
	v.Check(name != "", field, "must be provided")
	v.Check(v.MaxChars(name, 50), field, "must not be more than 50 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(v.Matches(email, EmailRX), "email", "must be a valid email address")
}

// bcrypt ignores everything past 72 bytes, so longer passwords are refused outright.
func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 6, "password", "must be at least 6 characters long")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}

func validateBio(v *common.Validator, bio string) {
	v.Check(v.MaxChars(bio, 500), "bio", "must not be more than 500 characters long")
}

func validateSignup(v *common.Validator, req *SignupRequest) {
	validateName(v, req.FirstName, "first_name")
	validateName(v, req.LastName, "last_name")
	validateEmail(v, req.Email)
	validatePassword(v, req.Password)
	if req.Bio != nil {
		validateBio(v, *req.Bio)
	}
}

func validateLogin(v *common.Validator, req *LoginRequest) {
	validateEmail(v, req.Email)
	v.Check(req.Password != "", "password", "must be provided")
}
