// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"

	"github.com/pierkoo/flasktaskr/internal/web"
)

type LoginForm struct {
	Name     string `form:"name"     validate:"required"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Name     string `form:"name"     validate:"required,max=25"`
	Email    string `form:"email"    validate:"required,email,max=40"`
	Password string `form:"password" validate:"required,max=40"`
	Confirm  string `form:"confirm"  validate:"required,eqfield=Password"`
}

// Normalize trims the name and email. Passwords are taken as typed.
func (f *RegisterForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *LoginForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
}

var registerFields = []web.Field{
	{Name: "name", Label: "Username"},
	{Name: "email", Label: "Email"},
	{Name: "password", Label: "Password"},
	{Name: "confirm", Label: "Repeat Password"},
}

type loginPage struct {
	Form  LoginForm
	Error string
}

type registerPage struct {
	Form  RegisterForm
	Error string
}
