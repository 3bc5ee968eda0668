package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/perfboard/internal/db"
	"gorm.io/gorm"
)

// ErrProfileInvalidInput 在档案输入异常时返回
var ErrProfileInvalidInput = errors.New("invalid profile input")

// ProfileService 负责用户档案的读取与更新
// 档案不存在时按默认值补建，调用方无需关心首次访问
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// ProfileInput 定义更新档案时可配置字段
type ProfileInput struct {
	FullName        string
	Timezone        string
	HydrationGoalML int
}

// Get 返回用户档案，缺失时创建默认档案
func (s *ProfileService) Get(userID uint) (*db.UserProfile, error) {
	var profile db.UserProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile = db.UserProfile{UserID: userID, HydrationGoalML: db.DefaultHydrationGoalML}
	if err := s.db.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &profile, nil
}

// Update 更新档案；饮水目标必须为正数
func (s *ProfileService) Update(userID uint, input ProfileInput) (*db.UserProfile, error) {
	if input.HydrationGoalML <= 0 {
		return nil, fmt.Errorf("%w: hydration goal must be positive", ErrProfileInvalidInput)
	}

	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	profile.FullName = strings.TrimSpace(input.FullName)
	profile.Timezone = strings.TrimSpace(input.Timezone)
	profile.HydrationGoalML = input.HydrationGoalML

	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

// SetAvatarURL 更新头像地址（由上传处理器调用）
func (s *ProfileService) SetAvatarURL(userID uint, url string) (*db.UserProfile, error) {
	profile, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	profile.AvatarURL = strings.TrimSpace(url)
	if err := s.db.Save(profile).Error; err != nil {
		return nil, fmt.Errorf("set avatar: %w", err)
	}
	return profile, nil
}
