package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrSkillNotFound 在指定技能不存在时返回
	ErrSkillNotFound = errors.New("skill not found")
	// ErrProjectNotFound 在指定项目不存在时返回
	ErrProjectNotFound = errors.New("project not found")
	// ErrDeliveryNotFound 在指定交付项不存在时返回
	ErrDeliveryNotFound = errors.New("delivery not found")
	// ErrSkillInvalidInput 在技能/项目输入异常时返回
	ErrSkillInvalidInput = errors.New("invalid skill input")
)

var (
	skillLevels     = []string{"beginner", "intermediate", "advanced", "expert"}
	projectStatuses = []string{"planning", "in_progress", "completed", "on_hold"}
)

// SkillService 负责技能、项目与交付项三层结构
type SkillService struct {
	db *gorm.DB
}

// NewSkillService 构造 SkillService
func NewSkillService(gdb *gorm.DB) *SkillService {
	return &SkillService{db: gdb}
}

// SkillDetail 是技能详情：项目及各自的交付项
type SkillDetail struct {
	Skill    db.Skill
	Projects []ProjectDetail
}

// ProjectDetail 是项目及其交付项
type ProjectDetail struct {
	Project    db.Project
	Deliveries []db.Delivery
}

// Skills 返回用户的全部技能，按创建时间倒序
func (s *SkillService) Skills(userID uint) ([]db.Skill, error) {
	var skills []db.Skill
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// AddSkill 新建技能，等级缺省为 beginner
func (s *SkillService) AddSkill(userID uint, name, level string) (*db.Skill, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: skill name is required", ErrSkillInvalidInput)
	}

	normalized := strings.TrimSpace(strings.ToLower(level))
	if normalized == "" {
		normalized = "beginner"
	}
	if !contains(skillLevels, normalized) {
		return nil, fmt.Errorf("%w: unsupported level %s", ErrSkillInvalidInput, level)
	}

	skill := db.Skill{UserID: userID, Name: strings.TrimSpace(name), Level: normalized}
	if err := s.db.Create(&skill).Error; err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return &skill, nil
}

// Detail 返回技能详情，含项目与交付项
func (s *SkillService) Detail(id, userID uint) (*SkillDetail, error) {
	var skill db.Skill
	if err := s.db.Where("user_id = ?", userID).First(&skill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("get skill: %w", err)
	}

	var projects []db.Project
	if err := s.db.Where("skill_id = ? AND user_id = ?", skill.ID, userID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	detail := &SkillDetail{Skill: skill, Projects: make([]ProjectDetail, 0, len(projects))}
	for _, project := range projects {
		var deliveries []db.Delivery
		if err := s.db.Where("project_id = ?", project.ID).
			Order("created_at ASC").
			Find(&deliveries).Error; err != nil {
			return nil, fmt.Errorf("list deliveries: %w", err)
		}
		detail.Projects = append(detail.Projects, ProjectDetail{Project: project, Deliveries: deliveries})
	}
	return detail, nil
}

// AddProject 在技能下新建项目
func (s *SkillService) AddProject(userID, skillID uint, name string) (*db.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrSkillInvalidInput)
	}

	var skill db.Skill
	if err := s.db.Where("user_id = ?", userID).First(&skill, skillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("find skill: %w", err)
	}

	project := db.Project{UserID: userID, SkillID: skill.ID, Name: strings.TrimSpace(name), Status: "planning"}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// UpdateProjectStatus 更新项目状态
func (s *SkillService) UpdateProjectStatus(id, userID uint, status string) (*db.Project, error) {
	normalized := strings.TrimSpace(strings.ToLower(status))
	if !contains(projectStatuses, normalized) {
		return nil, fmt.Errorf("%w: unsupported status %s", ErrSkillInvalidInput, status)
	}

	var project db.Project
	if err := s.db.Where("user_id = ?", userID).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	project.Status = normalized
	if err := s.db.Save(&project).Error; err != nil {
		return nil, fmt.Errorf("update project status: %w", err)
	}
	return &project, nil
}

// AddDelivery 在项目下新建交付项
func (s *SkillService) AddDelivery(userID, projectID uint, title string) (*db.Delivery, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: delivery title is required", ErrSkillInvalidInput)
	}

	var project db.Project
	if err := s.db.Where("user_id = ?", userID).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	delivery := db.Delivery{UserID: userID, ProjectID: project.ID, Title: strings.TrimSpace(title)}
	if err := s.db.Create(&delivery).Error; err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	return &delivery, nil
}

// ToggleDelivery 切换交付项完成状态
func (s *SkillService) ToggleDelivery(id, userID uint, isCompleted bool) (*db.Delivery, error) {
	var delivery db.Delivery
	if err := s.db.Where("user_id = ?", userID).First(&delivery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("find delivery: %w", err)
	}

	delivery.IsCompleted = isCompleted
	if err := s.db.Save(&delivery).Error; err != nil {
		return nil, fmt.Errorf("toggle delivery: %w", err)
	}
	return &delivery, nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
