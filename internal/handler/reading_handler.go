package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perfboard/internal/db"
	"github.com/perfboard/internal/service"
)

// GetReadingToday 返回当日阅读汇总
func (a *API) GetReadingToday(c *gin.Context) {
	summary, err := a.reading.Today(currentUserID(c), time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取阅读记录失败")
		return
	}

	logs := make([]gin.H, 0, len(summary.Logs))
	for _, log := range summary.Logs {
		item := gin.H{
			"id":         log.ID,
			"book_id":    log.BookID,
			"pages_read": log.PagesRead,
			"date":       log.Date.Format(dateFormat),
		}
		if log.Book.ID != 0 {
			item["book_title"] = log.Book.Title
		}
		logs = append(logs, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"pages_read":   summary.PagesRead,
		"current_book": summary.CurrentBook,
		"logs":         logs,
	})
}

// ListBooks 返回书籍列表
func (a *API) ListBooks(c *gin.Context) {
	books, err := a.reading.Books(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取书籍列表失败")
		return
	}

	items := make([]gin.H, 0, len(books))
	for _, book := range books {
		items = append(items, bookToPayload(book))
	}
	c.JSON(http.StatusOK, gin.H{"books": items})
}

// AddBook 新建书籍
func (a *API) AddBook(c *gin.Context) {
	var payload struct {
		Title      string `json:"title"`
		Author     string `json:"author"`
		TotalPages int    `json:"total_pages"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	book, err := a.reading.AddBook(currentUserID(c), service.BookInput{
		Title:      payload.Title,
		Author:     payload.Author,
		TotalPages: payload.TotalPages,
	})
	if err != nil {
		handleReadingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": bookToPayload(*book)})
}

// UpdateBookStatus 更新书籍状态
func (a *API) UpdateBookStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的书籍ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	book, err := a.reading.UpdateBookStatus(id, currentUserID(c), payload.Status)
	if err != nil {
		handleReadingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": bookToPayload(*book)})
}

// LogReading 记录一次阅读并联动书籍进度
func (a *API) LogReading(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的书籍ID")
		return
	}

	var payload struct {
		PagesRead int `json:"pages_read"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	log, err := a.reading.LogReading(currentUserID(c), id, payload.PagesRead, time.Now())
	if err != nil {
		handleReadingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"log": gin.H{
		"id":         log.ID,
		"book_id":    log.BookID,
		"pages_read": log.PagesRead,
		"date":       log.Date.Format(dateFormat),
	}})
}

func bookToPayload(book db.Book) gin.H {
	return gin.H{
		"id":           book.ID,
		"title":        book.Title,
		"author":       book.Author,
		"total_pages":  book.TotalPages,
		"current_page": book.CurrentPage,
		"status":       book.Status,
	}
}

func handleReadingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "书籍不存在")
	case errors.Is(err, service.ErrBookInvalidInput):
		respondError(c, http.StatusBadRequest, "书籍配置无效")
	case errors.Is(err, service.ErrReadingInvalidPages):
		respondError(c, http.StatusBadRequest, "阅读页数必须为正数")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
