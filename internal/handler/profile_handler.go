package handler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
	"golang.org/x/image/draw"
)

const avatarMaxSide = 256

// GetProfile 返回用户档案
func (a *API) GetProfile(c *gin.Context) {
	profile, err := a.profiles.Get(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取档案失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileToPayload(*profile)})
}

// UpdateProfile 更新用户档案
func (a *API) UpdateProfile(c *gin.Context) {
	var payload struct {
		FullName        string `json:"full_name"`
		Timezone        string `json:"timezone"`
		HydrationGoalML int    `json:"hydration_goal_ml"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	profile, err := a.profiles.Update(currentUserID(c), service.ProfileInput{
		FullName:        payload.FullName,
		Timezone:        payload.Timezone,
		HydrationGoalML: payload.HydrationGoalML,
	})
	if err != nil {
		if errors.Is(err, service.ErrProfileInvalidInput) {
			respondError(c, http.StatusBadRequest, "档案信息无效")
			return
		}
		respondError(c, http.StatusInternalServerError, "更新档案失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileToPayload(*profile)})
}

// UploadAvatar 处理头像上传：解码、等比缩放到 256 并统一存为 PNG
func (a *API) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		return
	}

	opened, err := file.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "读取上传文件失败")
		return
	}
	defer opened.Close()

	src, _, err := image.Decode(opened)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无法解析图片内容")
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, "创建上传目录失败")
		return
	}

	filename := fmt.Sprintf("avatar-%s.png", uuid.New().String())
	out, err := os.Create(filepath.Join(a.uploadDir, filename))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}
	defer out.Close()

	if err := png.Encode(out, scaleAvatar(src)); err != nil {
		respondError(c, http.StatusInternalServerError, "保存文件失败")
		return
	}

	avatarURL := fmt.Sprintf("%s/%s", strings.TrimRight(a.uploadURL, "/"), filename)
	profile, err := a.profiles.SetAvatarURL(currentUserID(c), avatarURL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "更新头像失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     avatarURL,
		"profile": profileToPayload(*profile),
	})
}

// scaleAvatar 等比缩放图片，最长边不超过 avatarMaxSide
func scaleAvatar(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= avatarMaxSide && height <= avatarMaxSide {
		return src
	}

	if width >= height {
		height = height * avatarMaxSide / width
		width = avatarMaxSide
	} else {
		width = width * avatarMaxSide / height
		height = avatarMaxSide
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func profileToPayload(profile db.UserProfile) gin.H {
	item := gin.H{
		"full_name":         profile.FullName,
		"timezone":          profile.Timezone,
		"hydration_goal_ml": profile.HydrationGoalML,
		"avatar_url":        profile.AvatarURL,
	}
	if profile.LastRollupDate != nil {
		item["last_rollup_date"] = profile.LastRollupDate.Format(dateFormat)
	}
	return item
}
