package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"storyhouse/internal/models"
	"storyhouse/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgStorySaved   = "Your story has been saved!"
	msgStoryUpdated = "Your story has been updated!"
	msgStoryDeleted = "Your story has been deleted!"
	msgSlugConflict = "Another story just took this title's link, please save again."
)

func (h *Handler) index(c *gin.Context) {
	stories, err := h.services.Feed(c.Request.Context())
	if err != nil {
		h.pageError(c, "story_feed_failed", err)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Title": "Home", "Stories": stories})
}

func (h *Handler) dashboard(c *gin.Context) {
	u := currentUser(c)
	stories, err := h.services.Dashboard(c.Request.Context(), u.ID)
	if err != nil {
		h.pageError(c, "story_dashboard_failed", err, "user_id", u.ID)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "Stories": stories})
}

func (h *Handler) readStory(c *gin.Context) {
	st, err := h.services.Read(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.pageError(c, "story_read_failed", err, "slug", c.Param("slug"))
		return
	}
	h.render(c, http.StatusOK, "read_story.html", gin.H{"Title": st.Title, "Story": st})
}

func (h *Handler) writePage(c *gin.Context) {
	h.render(c, http.StatusOK, "write_story.html", gin.H{"Title": "Write a Story", "Form": storyForm{}})
}

func (h *Handler) writeStory(c *gin.Context) {
	u := currentUser(c)
	var form storyForm
	errs := bindForm(c, &form, "title", "subtitle")
	if errs == nil {
		_, err := h.services.Stories.Create(c.Request.Context(), u.ID, form.params())
		switch {
		case err == nil:
			h.setFlash(c, flashSuccess, msgStorySaved)
			c.Redirect(http.StatusFound, "/dashboard")
			return
		case errors.Is(err, service.ErrSlugConflict):
			errs = formErrors{"title": msgSlugConflict}
		default:
			h.pageError(c, "story_create_failed", err, "user_id", u.ID)
			return
		}
	}
	h.render(c, formStatus(errs), "write_story.html", gin.H{"Title": "Write a Story", "Form": form, "Errors": errs})
}

func (h *Handler) editPage(c *gin.Context) {
	st, ok := h.ownedStory(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "edit_story.html", gin.H{
		"Title": "Edit Story",
		"Story": st,
		"Form": storyForm{
			Title:     st.Title,
			Subtitle:  st.Subtitle,
			Content:   st.Content,
			Published: st.Published,
		},
	})
}

func (h *Handler) editStory(c *gin.Context) {
	// ownership is settled before the form is looked at
	st, ok := h.ownedStory(c)
	if !ok {
		return
	}

	u := currentUser(c)
	var form storyForm
	errs := bindForm(c, &form, "title", "subtitle")
	if errs == nil {
		_, err := h.services.Stories.Update(c.Request.Context(), st.ID, u.ID, form.params())
		switch {
		case err == nil:
			h.setFlash(c, flashSuccess, msgStoryUpdated)
			c.Redirect(http.StatusFound, "/dashboard")
			return
		case errors.Is(err, service.ErrSlugConflict):
			errs = formErrors{"title": msgSlugConflict}
		default:
			h.pageError(c, "story_update_failed", err, "story_id", st.ID, "user_id", u.ID)
			return
		}
	}
	h.render(c, formStatus(errs), "edit_story.html", gin.H{"Title": "Edit Story", "Story": st, "Form": form, "Errors": errs})
}

func (h *Handler) deleteStory(c *gin.Context) {
	id, ok := h.storyID(c)
	if !ok {
		return
	}
	u := currentUser(c)
	if err := h.services.Stories.Delete(c.Request.Context(), id, u.ID); err != nil {
		h.pageError(c, "story_delete_failed", err, "story_id", id, "user_id", u.ID)
		return
	}
	h.setFlash(c, flashSuccess, msgStoryDeleted)
	c.Redirect(http.StatusFound, "/dashboard")
}

// ownedStory loads the story named by :id for the current user, rendering
// 404 or 403 itself when that is not possible.
func (h *Handler) ownedStory(c *gin.Context) (*models.Story, bool) {
	id, ok := h.storyID(c)
	if !ok {
		return nil, false
	}
	u := currentUser(c)
	st, err := h.services.GetOwned(c.Request.Context(), id, u.ID)
	if err != nil {
		h.pageError(c, "story_load_failed", err, "story_id", id, "user_id", u.ID)
		return nil, false
	}
	return st, true
}

func (h *Handler) storyID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.renderError(c, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (f storyForm) params() service.StoryParams {
	return service.StoryParams{
		Title:     f.Title,
		Subtitle:  f.Subtitle,
		Content:   f.Content,
		Published: f.Published,
	}
}
