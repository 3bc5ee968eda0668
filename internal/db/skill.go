package db

import "gorm.io/gorm"

// Skill 定义了技能模型，Level 取值 beginner/intermediate/advanced/expert
type Skill struct {
	gorm.Model
	UserID uint `gorm:"index"`
	User   User `gorm:"constraint:OnDelete:CASCADE"`
	Name   string
	Level  string `gorm:"default:beginner"`
}

// Project 归属于某个技能，Status 取值 planning/in_progress/completed/on_hold
type Project struct {
	gorm.Model
	UserID  uint  `gorm:"index"`
	User    User  `gorm:"constraint:OnDelete:CASCADE"`
	SkillID uint  `gorm:"index"`
	Skill   Skill `gorm:"constraint:OnDelete:CASCADE"`
	Name    string
	Status  string `gorm:"default:planning"`
}

// Delivery 是项目下的单个交付项
type Delivery struct {
	gorm.Model
	UserID      uint    `gorm:"index"`
	User        User    `gorm:"constraint:OnDelete:CASCADE"`
	ProjectID   uint    `gorm:"index"`
	Project     Project `gorm:"constraint:OnDelete:CASCADE"`
	Title       string
	IsCompleted bool `gorm:"default:false"`
}
