package handlers

import (
	"net/http"
	"strings"

	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc services.PostService
}

func NewPostHandler(svc services.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

type TextRequest struct {
	Text string `json:"text" binding:"required" msg:"Text is required"`
}

func bindText(c *gin.Context, op string) (string, bool) {
	var req TextRequest
	if !bindJSON(c, op, &req) {
		return "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(c, utils.Invalid(op, utils.FieldError{Field: "text", Msg: "Text is required"}))
		return "", false
	}
	return req.Text, true
}

func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	text, ok := bindText(c, "PostHandler.Create")
	if !ok {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), userID, text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *PostHandler) Get(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgResponse{Msg: "Post removed"})
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, err := h.svc.ToggleLike(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	text, ok := bindText(c, "PostHandler.AddComment")
	if !ok {
		return
	}

	comments, err := h.svc.AddComment(c.Request.Context(), userID, c.Param("id"), text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *PostHandler) RemoveComment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	comments, err := h.svc.RemoveComment(c.Request.Context(), userID, c.Param("post_id"), c.Param("comment_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
