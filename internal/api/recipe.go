package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastoria/backend/internal/filter"
	"github.com/tastoria/backend/internal/service"
)

const (
	defaultPageSize = 12
	maxPageSize     = 50
)

// RecipeHandler serves the public recipe surface.
type RecipeHandler struct {
	recipes service.IRecipeService
}

func NewRecipeHandler(recipes service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes mounts the public routes. authRequired guards the
// review and favorite writes.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, authRequired gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/featured", h.GetFeatured)
		recipes.GET("/seasonal", h.GetSeasonal)
		recipes.GET("/meal-of-the-day", h.GetMealOfTheDay)
		recipes.GET("/:slug", h.GetRecipe)
		recipes.GET("/:slug/suggestions", h.GetSuggestions)
		recipes.POST("/:slug/reviews", authRequired, h.AddReview)
		recipes.POST("/:slug/favorite", authRequired, h.ToggleFavorite)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	q := filter.Parse(c.Request.URL.Query())

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result, err := h.recipes.Search(c.Request.Context(), q, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Recipes: result.Recipes,
		Pagination: Pagination{
			CurrentPage: result.Page,
			TotalPages:  result.TotalPages,
			HasNextPage: result.HasNext,
			HasPrevPage: result.HasPrev,
		},
		Total: result.Total,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))
	recipes, err := h.recipes.GetFeatured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetSeasonal(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))
	recipes, err := h.recipes.GetSeasonal(c.Request.Context(), c.Query("season"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetMealOfTheDay(c *gin.Context) {
	recipe, err := h.recipes.PickOfTheDay(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) GetSuggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "4"))
	recipes, err := h.recipes.GetSuggestions(c.Request.Context(), c.Param("slug"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) AddReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.AddReview(c.Request.Context(), c.Param("slug"), userID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	favorited, err := h.recipes.ToggleFavorite(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorited": favorited})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}
