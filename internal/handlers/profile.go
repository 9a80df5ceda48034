package handlers

import (
	"errors"
	"net/http"

	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const msgProfileUpdated = "Your profile has been updated!"

func (h *Handler) profilePage(c *gin.Context) {
	u := currentUser(c)
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Title": "Profile",
		"Form":  profileForm{Username: u.Username, Email: u.Email, Bio: u.Bio},
	})
}

func (h *Handler) updateProfile(c *gin.Context) {
	u := currentUser(c)
	var form profileForm
	errs := bindForm(c, &form, "username", "email", "bio")
	if errs == nil {
		updated, err := h.services.UpdateProfile(c.Request.Context(), u.ID, service.ProfileParams{
			Username: form.Username,
			Email:    form.Email,
			Bio:      form.Bio,
		})
		switch {
		case err == nil:
			if h.log != nil {
				h.log.Infow("profile_updated", "user_id", updated.ID)
			}
			h.setFlash(c, flashSuccess, msgProfileUpdated)
			c.Redirect(http.StatusFound, "/profile")
			return
		case errors.Is(err, service.ErrUsernameTaken):
			errs = formErrors{"username": msgUsernameTaken}
		case errors.Is(err, service.ErrEmailTaken):
			errs = formErrors{"email": msgEmailTaken}
		default:
			h.pageError(c, "profile_update_failed", err, "user_id", u.ID)
			return
		}
	}
	h.render(c, formStatus(errs), "profile.html", gin.H{"Title": "Profile", "Form": form, "Errors": errs})
}

// deleteAccount removes the caller and, through the store, all their stories.
func (h *Handler) deleteAccount(c *gin.Context) {
	u := currentUser(c)
	if err := h.services.DeleteAccount(c.Request.Context(), u.ID); err != nil {
		h.pageError(c, "profile_delete_failed", err, "user_id", u.ID)
		return
	}
	if h.log != nil {
		h.log.Infow("profile_deleted", "user_id", u.ID)
	}
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) authorProfile(c *gin.Context) {
	author, stories, err := h.services.GetAuthor(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.pageError(c, "author_load_failed", err, "username", c.Param("username"))
		return
	}
	h.render(c, http.StatusOK, "author.html", gin.H{"Title": author.Username, "Author": author, "Stories": stories})
}
