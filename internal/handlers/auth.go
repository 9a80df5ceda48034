package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultAfterLogin = "/dashboard"

	msgInvalidLogin  = "Invalid username or password"
	msgRegistered    = "Congratulations, you are now a registered user!"
	msgUsernameTaken = "Please use a different username."
	msgEmailTaken    = "Please use a different email address."
)

// safeNext accepts only same-origin paths as post-login targets. Browsers
// drop tabs and newlines from a Location, so "/\t/host" must not pass;
// url.Parse refuses control characters outright.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return defaultAfterLogin
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return defaultAfterLogin
	}
	return next
}

func nextParam(c *gin.Context) string {
	if next := c.Query("next"); next != "" {
		return next
	}
	return c.PostForm("next")
}

func (h *Handler) loginPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Sign In",
		"Form":  loginForm{},
		"Next":  nextParam(c),
	})
}

func (h *Handler) login(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form loginForm
	if errs := bindForm(c, &form, "username"); errs != nil {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":  "Sign In",
			"Form":   form,
			"Errors": errs,
			"Next":   nextParam(c),
		})
		return
	}

	u, err := h.services.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.log != nil {
				h.log.Infow("auth_sign_in_failed", "username", form.Username)
			}
			h.setFlash(c, flashDanger, msgInvalidLogin)
			c.Redirect(http.StatusFound, "/login")
			return
		}
		h.pageError(c, "auth_sign_in_error", err, "username", form.Username)
		return
	}

	if err := h.startSession(c, u.ID, form.RememberMe); err != nil {
		h.pageError(c, "auth_session_issue_failed", err, "user_id", u.ID)
		return
	}
	c.Redirect(http.StatusFound, safeNext(nextParam(c)))
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) registerPage(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": registerForm{}})
}

func (h *Handler) register(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	var form registerForm
	errs := bindForm(c, &form, "username", "email")
	if errs == nil {
		_, err := h.services.Register(c.Request.Context(), service.RegisterParams{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
		switch {
		case err == nil:
			h.setFlash(c, flashSuccess, msgRegistered)
			c.Redirect(http.StatusFound, "/login")
			return
		case errors.Is(err, service.ErrUsernameTaken):
			errs = formErrors{"username": msgUsernameTaken}
		case errors.Is(err, service.ErrEmailTaken):
			errs = formErrors{"email": msgEmailTaken}
		default:
			h.pageError(c, "auth_sign_up_failed", err, "username", form.Username)
			return
		}
	}

	form.Password, form.Password2 = "", ""
	h.render(c, formStatus(errs), "register.html", gin.H{"Title": "Register", "Form": form, "Errors": errs})
}

// formStatus is 409 when the only problem is a uniqueness collision and
// 400 for ordinary validation failures.
func formStatus(errs formErrors) int {
	for _, msg := range errs {
		switch msg {
		case msgUsernameTaken, msgEmailTaken, msgSlugConflict:
		default:
			return http.StatusBadRequest
		}
	}
	return http.StatusConflict
}
