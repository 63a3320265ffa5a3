package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc    services.ProfileService
	github services.GithubService
}

func NewProfileHandler(svc services.ProfileService, github services.GithubService) *ProfileHandler {
	return &ProfileHandler{svc: svc, github: github}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpsertProfileRequest takes skills as a comma separated string and social
// links as top level fields.
type UpsertProfileRequest struct {
	Company        *string `json:"company"`
	Website        *string `json:"website"`
	Location       *string `json:"location"`
	Status         string  `json:"status" binding:"required" msg:"Status is required"`
	Skills         string  `json:"skills" binding:"required" msg:"Skills is required"`
	Bio            *string `json:"bio"`
	GithubUsername *string `json:"githubusername"`
	YouTube        *string `json:"youtube"`
	Twitter        *string `json:"twitter"`
	Facebook       *string `json:"facebook"`
	LinkedIn       *string `json:"linkedin"`
	Instagram      *string `json:"instagram"`
}

func splitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r UpsertProfileRequest) fields() models.ProfileFields {
	status := strings.TrimSpace(r.Status)
	return models.ProfileFields{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Status:         &status,
		Skills:         splitSkills(r.Skills),
		Bio:            r.Bio,
		GithubUsername: r.GithubUsername,
		YouTube:        r.YouTube,
		Twitter:        r.Twitter,
		Facebook:       r.Facebook,
		LinkedIn:       r.LinkedIn,
		Instagram:      r.Instagram,
	}
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	const op = "ProfileHandler.Upsert"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpsertProfileRequest
	if !bindJSON(c, op, &req) {
		return
	}

	fields := req.fields()
	var violations []utils.FieldError
	if *fields.Status == "" {
		violations = append(violations, utils.FieldError{Field: "status", Msg: "Status is required"})
	}
	if len(fields.Skills) == 0 {
		violations = append(violations, utils.FieldError{Field: "skills", Msg: "Skills is required"})
	}
	if len(violations) > 0 {
		writeError(c, utils.Invalid(op, violations...))
		return
	}

	p, err := h.svc.Upsert(c.Request.Context(), userID, fields)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) GetByUser(c *gin.Context) {
	p, err := h.svc.GetByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate accepts the formats a browser date input or JSON.stringify produces.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseRange validates from (required) and to (optional).
func parseRange(op, from, to string) (time.Time, *time.Time, error) {
	f, ok := parseDate(from)
	if !ok {
		return time.Time{}, nil, utils.Invalid(op, utils.FieldError{Field: "from", Msg: "From date is required"})
	}
	if strings.TrimSpace(to) == "" {
		return f, nil, nil
	}
	t, ok := parseDate(to)
	if !ok {
		return time.Time{}, nil, utils.Invalid(op, utils.FieldError{Field: "to", Msg: "To date is invalid"})
	}
	return f, &t, nil
}

type ExperienceRequest struct {
	Title       string `json:"title" binding:"required" msg:"Title is required"`
	Company     string `json:"company" binding:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

func (h *ProfileHandler) AddExperience(c *gin.Context) {
	const op = "ProfileHandler.AddExperience"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ExperienceRequest
	if !bindJSON(c, op, &req) {
		return
	}
	from, to, err := parseRange(op, req.From, req.To)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.svc.AddExperience(c.Request.Context(), userID, models.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) RemoveExperience(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.RemoveExperience(c.Request.Context(), userID, c.Param("exp_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type EducationRequest struct {
	School       string `json:"school" binding:"required" msg:"School is required"`
	Degree       string `json:"degree" binding:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required" msg:"Field of study is required"`
	From         string `json:"from" binding:"required" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (h *ProfileHandler) AddEducation(c *gin.Context) {
	const op = "ProfileHandler.AddEducation"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req EducationRequest
	if !bindJSON(c, op, &req) {
		return
	}
	from, to, err := parseRange(op, req.From, req.To)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.svc.AddEducation(c.Request.Context(), userID, models.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) RemoveEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.RemoveEducation(c.Request.Context(), userID, c.Param("edu_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) GithubRepos(c *gin.Context) {
	repos, err := h.github.Repos(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, repos)
}
