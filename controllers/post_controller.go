package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hiking-backend/services"
	"hiking-backend/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"max=200"`
	CategoryID  *uint  `json:"category"`
	Content     string `json:"content"`
	Excerpt     string `json:"excerpt" binding:"max=500"`
	Image       string `json:"image"`
	IsPublished bool   `json:"is_published"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	CategoryID  *uint   `json:"category"`
	Content     *string `json:"content"`
	Excerpt     *string `json:"excerpt" binding:"omitempty,max=500"`
	Image       *string `json:"image"`
	IsPublished *bool   `json:"is_published"`
}

// ---------------------------
// Controller
// ---------------------------

type PostController struct {
	BlogSvc *services.BlogService
}

func NewPostController(svc *services.BlogService) *PostController {
	return &PostController{BlogSvc: svc}
}

func (ctrl *PostController) GetPosts(c *gin.Context) {
	f := services.PostFilter{
		AuthorID:   utils.ParseOptionalUint(c.Query("author")),
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
		Pagination: pagination(c),
	}
	// category accepts an id or a slug
	if raw := c.Query("category"); raw != "" {
		if id := utils.ParseOptionalUint(raw); id != nil {
			f.CategoryID = id
		} else {
			f.CategorySlug = raw
		}
	}

	list, total, err := ctrl.BlogSvc.ListPosts(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Posts retrieved successfully", page(f.Pagination, total, list))
}

// GetPost counts a view on every successful read.
func (ctrl *PostController) GetPost(c *gin.Context) {
	post, err := ctrl.BlogSvc.ViewPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Post retrieved successfully", post)
}

func (ctrl *PostController) CreatePost(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	post, err := ctrl.BlogSvc.CreatePost(c.Request.Context(), userID, services.PostInput{
		Title:       req.Title,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Image:       req.Image,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Post created successfully", post)
}

func (ctrl *PostController) UpdatePost(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	post, err := ctrl.BlogSvc.UpdatePost(c.Request.Context(), userID, c.Param("slug"), services.PostUpdate{
		Title:       req.Title,
		CategoryID:  req.CategoryID,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Image:       req.Image,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Post updated successfully", post)
}

func (ctrl *PostController) DeletePost(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	if err := ctrl.BlogSvc.DeletePost(c.Request.Context(), userID, c.Param("slug")); err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Post deleted successfully", nil)
}

func (ctrl *PostController) GetCategories(c *gin.Context) {
	list, err := ctrl.BlogSvc.ListCategories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Categories retrieved successfully", list)
}

func (ctrl *PostController) GetStats(c *gin.Context) {
	stats, err := ctrl.BlogSvc.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Blog statistics", stats)
}

func (ctrl *PostController) SearchPosts(c *gin.Context) {
	list, err := ctrl.BlogSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Search results", gin.H{"results": list, "count": len(list)})
}
