package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var validatorsOnce sync.Once

// registerValidators adds the custom rules to gin's validator and reports
// field errors under their form names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

type loginForm struct {
	Username   string `form:"username" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

type registerForm struct {
	Username  string `form:"username" binding:"required,min=3,max=80,username"`
	Email     string `form:"email" binding:"required,email,max=120"`
	Password  string `form:"password" binding:"required,min=6,max=72"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
}

type storyForm struct {
	Title     string `form:"title" binding:"required,max=200"`
	Subtitle  string `form:"subtitle" binding:"max=300"`
	Content   string `form:"content" binding:"required,notblank"`
	Published bool   `form:"published"`
}

type profileForm struct {
	Username string `form:"username" binding:"required,min=3,max=80,username"`
	Email    string `form:"email" binding:"required,email,max=120"`
	Bio      string `form:"bio" binding:"max=1000"`
}

// formErrors maps a form field name to the message shown next to it.
type formErrors map[string]string

const formErrorKey = "_form"

// bindForm trims the named fields, binds the posted form into dst and
// validates it. The returned formErrors is nil when the form is valid.
func bindForm(c *gin.Context, dst any, trimmed ...string) formErrors {
	if err := trimFormFields(c.Request, trimmed...); err != nil {
		return formErrors{formErrorKey: "The form could not be read."}
	}
	if err := c.ShouldBindWith(dst, binding.Form); err != nil {
		return validationMessages(err)
	}
	return nil
}

func trimFormFields(r *http.Request, fields ...string) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	for _, f := range fields {
		for _, values := range []map[string][]string{r.Form, r.PostForm} {
			for i, v := range values[f] {
				values[f][i] = strings.TrimSpace(v)
			}
		}
	}
	return nil
}

func validationMessages(err error) formErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return formErrors{formErrorKey: "The form could not be read."}
	}
	out := make(formErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return "Field must be equal to password."
	case "username":
		return "Only letters, digits, dots, underscores and hyphens are allowed."
	default:
		return "Invalid value."
	}
}
