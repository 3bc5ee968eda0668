package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// ListSkills 返回技能列表
func (a *API) ListSkills(c *gin.Context) {
	skills, err := a.skills.Skills(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取技能列表失败")
		return
	}

	items := make([]gin.H, 0, len(skills))
	for _, skill := range skills {
		items = append(items, skillToPayload(skill))
	}
	c.JSON(http.StatusOK, gin.H{"skills": items})
}

// AddSkill 新建技能
func (a *API) AddSkill(c *gin.Context) {
	var payload struct {
		Name  string `json:"name"`
		Level string `json:"level"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	skill, err := a.skills.AddSkill(currentUserID(c), payload.Name, payload.Level)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skill": skillToPayload(*skill)})
}

// GetSkillDetail 返回技能详情，含项目与交付项
func (a *API) GetSkillDetail(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技能ID")
		return
	}

	detail, err := a.skills.Detail(id, currentUserID(c))
	if err != nil {
		handleSkillError(c, err)
		return
	}

	projects := make([]gin.H, 0, len(detail.Projects))
	for _, project := range detail.Projects {
		deliveries := make([]gin.H, 0, len(project.Deliveries))
		for _, delivery := range project.Deliveries {
			deliveries = append(deliveries, gin.H{
				"id":           delivery.ID,
				"title":        delivery.Title,
				"is_completed": delivery.IsCompleted,
			})
		}
		projects = append(projects, gin.H{
			"id":         project.Project.ID,
			"name":       project.Project.Name,
			"status":     project.Project.Status,
			"deliveries": deliveries,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"skill":    skillToPayload(detail.Skill),
		"projects": projects,
	})
}

// AddProject 在技能下新建项目
func (a *API) AddProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的技能ID")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	project, err := a.skills.AddProject(currentUserID(c), id, payload.Name)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": gin.H{
		"id":     project.ID,
		"name":   project.Name,
		"status": project.Status,
	}})
}

// UpdateProjectStatus 更新项目状态
func (a *API) UpdateProjectStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	project, err := a.skills.UpdateProjectStatus(id, currentUserID(c), payload.Status)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": gin.H{
		"id":     project.ID,
		"name":   project.Name,
		"status": project.Status,
	}})
}

// AddDelivery 在项目下新建交付项
func (a *API) AddDelivery(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的项目ID")
		return
	}

	var payload struct {
		Title string `json:"title"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	delivery, err := a.skills.AddDelivery(currentUserID(c), id, payload.Title)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery": gin.H{
		"id":           delivery.ID,
		"title":        delivery.Title,
		"is_completed": delivery.IsCompleted,
	}})
}

// ToggleDelivery 切换交付项完成状态
func (a *API) ToggleDelivery(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的交付项ID")
		return
	}

	var payload struct {
		IsCompleted bool `json:"is_completed"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	delivery, err := a.skills.ToggleDelivery(id, currentUserID(c), payload.IsCompleted)
	if err != nil {
		handleSkillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delivery": gin.H{
		"id":           delivery.ID,
		"title":        delivery.Title,
		"is_completed": delivery.IsCompleted,
	}})
}

func skillToPayload(skill db.Skill) gin.H {
	return gin.H{
		"id":    skill.ID,
		"name":  skill.Name,
		"level": skill.Level,
	}
}

func handleSkillError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSkillNotFound):
		respondError(c, http.StatusNotFound, "技能不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, "项目不存在")
	case errors.Is(err, service.ErrDeliveryNotFound):
		respondError(c, http.StatusNotFound, "交付项不存在")
	case errors.Is(err, service.ErrSkillInvalidInput):
		respondError(c, http.StatusBadRequest, "输入信息无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
