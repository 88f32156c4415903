package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogService publishes posts and keeps their view counters.
type BlogService struct {
	DB *gorm.DB
}

func NewBlogService(db *gorm.DB) *BlogService {
	return &BlogService{DB: db}
}

type PostFilter struct {
	CategoryID *uint
	// CategorySlug is an alternative to CategoryID.
	CategorySlug string
	AuthorID     *uint
	Search       string
	Ordering     string
	utils.Pagination
}

type PostInput struct {
	Title       string
	Slug        string
	CategoryID  *uint
	Content     string
	Excerpt     string
	Image       string
	IsPublished bool
}

type PostUpdate struct {
	Title       *string
	CategoryID  *uint
	Content     *string
	Excerpt     *string
	Image       *string
	IsPublished *bool
}

var postOrdering = map[string]string{
	"created_at": "created_at",
	"views":      "views",
	"title":      "title",
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

var postSearchClause = containsClause("title") + " OR " + containsClause("content") + " OR " + containsClause("excerpt")

// Slugify lower-cases s and joins its alphanumeric runs with '-'.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (s *BlogService) published(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.Post{}).Where("is_published = ?", true)
}

// ListPosts returns published posts only.
func (s *BlogService) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error) {
	q := s.published(ctx)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		q = q.Where("category_id IN (?)",
			s.DB.WithContext(ctx).Model(&models.PostCategory{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := utils.LikeContains(term)
		q = q.Where(postSearchClause, like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	list := []models.Post{}
	err := q.Preload("Author").Preload("Category").
		Order(utils.ParseOrdering(f.Ordering, postOrdering, "created_at DESC")).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve posts: %w", err)
	}
	return list, total, nil
}

// ViewPost returns a published post and counts the view. The increment is a single UPDATE so
// concurrent readers never lose a count.
func (s *BlogService) ViewPost(ctx context.Context, slug string) (*models.Post, error) {
	res := s.DB.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? AND is_published = ?", slug, true).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to count post view: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("post not found")
	}
	return s.loadBySlug(ctx, slug)
}

func (s *BlogService) loadBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := s.DB.WithContext(ctx).Preload("Author").Preload("Category").
		Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("post not found")
		}
		return nil, fmt.Errorf("failed to retrieve post: %w", err)
	}
	return &post, nil
}

// CreatePost stores a post written by authorID. An empty slug is derived from the title.
func (s *BlogService) CreatePost(ctx context.Context, authorID uint, in PostInput) (*models.Post, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "this field is required"
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	if slug == "" {
		fields["slug"] = "cannot derive a slug"
	}
	if len(fields) > 0 {
		return nil, utils.Validation("invalid post", fields)
	}

	db := s.DB.WithContext(ctx)
	if in.CategoryID != nil {
		if err := mustExist(db, &models.PostCategory{}, *in.CategoryID, "category"); err != nil {
			return nil, err
		}
	}

	taken := utils.Validation("a post with this slug already exists", map[string]string{"slug": "must be unique"})
	var existing int64
	if err := db.Model(&models.Post{}).Where("slug = ?", slug).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if existing > 0 {
		return nil, taken
	}

	post := models.Post{
		Title:       strings.TrimSpace(in.Title),
		Slug:        slug,
		AuthorID:    authorID,
		CategoryID:  in.CategoryID,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Image:       in.Image,
		IsPublished: in.IsPublished,
	}
	if err := db.Omit(clause.Associations).Create(&post).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, taken
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return s.loadBySlug(ctx, slug)
}

// UpdatePost edits a post; only its author may do so.
func (s *BlogService) UpdatePost(ctx context.Context, userID uint, slug string, in PostUpdate) (*models.Post, error) {
	post, err := s.authored(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, utils.Validation("title must not be blank", map[string]string{"title": "must not be blank"})
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.CategoryID != nil {
		if err := mustExist(s.DB.WithContext(ctx), &models.PostCategory{}, *in.CategoryID, "category"); err != nil {
			return nil, err
		}
		updates["category_id"] = *in.CategoryID
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Excerpt != nil {
		updates["excerpt"] = *in.Excerpt
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
	}
	return s.loadBySlug(ctx, post.Slug)
}

// DeletePost removes a post; only its author may do so.
func (s *BlogService) DeletePost(ctx context.Context, userID uint, slug string) error {
	post, err := s.authored(ctx, userID, slug)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Post{}, post.ID).Error; err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// authored loads a post by slug regardless of publish state, so authors can reach their drafts.
func (s *BlogService) authored(ctx context.Context, userID uint, slug string) (*models.Post, error) {
	post, err := s.loadBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, utils.PermissionDenied("you can only change your own posts")
	}
	return post, nil
}

// ListCategories returns every blog category with its number of published posts.
func (s *BlogService) ListCategories(ctx context.Context) ([]models.PostCategory, error) {
	db := s.DB.WithContext(ctx)

	categories := []models.PostCategory{}
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve blog categories: %w", err)
	}

	var rows []struct {
		CategoryID uint
		Total      int64
	}
	if err := db.Model(&models.Post{}).
		Select("category_id, COUNT(*) AS total").
		Where("is_published = ? AND category_id IS NOT NULL", true).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts per category: %w", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Total
	}
	for i := range categories {
		categories[i].PostCount = counts[categories[i].ID]
	}
	return categories, nil
}

// Stats counts published posts, categories and total views of published posts.
func (s *BlogService) Stats(ctx context.Context) (models.BlogStats, error) {
	var stats models.BlogStats
	if err := s.published(ctx).Count(&stats.TotalPosts).Error; err != nil {
		return stats, fmt.Errorf("failed to count posts: %w", err)
	}
	if err := s.DB.WithContext(ctx).Model(&models.PostCategory{}).Count(&stats.TotalCategories).Error; err != nil {
		return stats, fmt.Errorf("failed to count categories: %w", err)
	}
	if err := s.published(ctx).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return stats, fmt.Errorf("failed to sum views: %w", err)
	}
	return stats, nil
}

// Search matches published posts on title, content or excerpt. It is a plain substring match.
func (s *BlogService) Search(ctx context.Context, term string) ([]models.Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, utils.Validation("Search query is required", map[string]string{"q": "this parameter is required"})
	}
	like := utils.LikeContains(term)
	list := []models.Post{}
	err := s.published(ctx).
		Where(postSearchClause, like, like, like).
		Preload("Author").Preload("Category").
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return list, nil
}
