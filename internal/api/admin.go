package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastoria/backend/internal/model"
	"github.com/tastoria/backend/internal/service"
)

// AdminHandler serves the admin console: full catalog CRUD plus the AI
// generation endpoints.
type AdminHandler struct {
	recipes service.IRecipeService
	ingest  service.IIngestService
	// images may be nil when image generation is not configured.
	images service.ImageGenerator
}

func NewAdminHandler(recipes service.IRecipeService, ingest service.IIngestService, images service.ImageGenerator) *AdminHandler {
	return &AdminHandler{recipes: recipes, ingest: ingest, images: images}
}

// RegisterRoutes mounts the admin routes. adminRequired must validate the
// token and the admin claim; generateLimit throttles the generation route.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, adminRequired gin.HandlerFunc, generateLimit gin.HandlerFunc) {
	admin := router.Group("/admin", adminRequired)
	{
		admin.GET("/recipes", h.ListRecipes)
		admin.POST("/recipes", h.CreateRecipe)
		admin.GET("/recipes/:id", h.GetRecipe)
		admin.PUT("/recipes/:id", h.UpdateRecipe)
		admin.DELETE("/recipes/:id", h.DeleteRecipe)
		admin.POST("/recipes/generate", generateLimit, h.GenerateRecipes)
		admin.POST("/images/generate", h.GenerateImage)
	}
}

func (h *AdminHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *AdminHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *AdminHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uuid.UUID); ok {
			recipe.CreatedBy = id
		}
	}

	created, err := h.recipes.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), id, &recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted", "id": id.String()})
}

func (h *AdminHandler) GenerateRecipes(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.ingest.GenerateFromPrompt(c.Request.Context(), req.Prompt, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GenerateImage produces a standalone image from a prompt. When the body
// names a recipe the URL is attached to it; an attach failure is logged but
// does not fail the request, since the image itself was produced.
func (h *AdminHandler) GenerateImage(c *gin.Context) {
	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image generation is not configured"})
		return
	}

	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Size == "" {
		req.Size = "1024x1024"
	}

	imageURL, err := h.images.GenerateImageFromPrompt(c.Request.Context(), req.Prompt, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.RecipeID != "" {
		if id, err := uuid.Parse(req.RecipeID); err != nil {
			log.Printf("[AdminHandler] Skipping image attach, invalid recipe id %q", req.RecipeID)
		} else if err := h.recipes.AttachImage(c.Request.Context(), id, imageURL); err != nil {
			log.Printf("[AdminHandler] Failed to attach image to recipe %s: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return uuid.Nil, false
	}
	return id, true
}
