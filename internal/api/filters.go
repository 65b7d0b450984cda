package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastoria/backend/internal/service"
)

// FilterHandler serves the filter-UI metadata routes. The range and season
// listings are static presets; options and tags come from the catalog.
type FilterHandler struct {
	recipes service.IRecipeService
}

func NewFilterHandler(recipes service.IRecipeService) *FilterHandler {
	return &FilterHandler{recipes: recipes}
}

func (h *FilterHandler) RegisterRoutes(router *gin.RouterGroup) {
	filters := router.Group("/filters")
	{
		filters.GET("/options", h.GetOptions)
		filters.GET("/tags", h.GetTags)
		filters.GET("/time-ranges", h.GetTimeRanges)
		filters.GET("/calorie-ranges", h.GetCalorieRanges)
		filters.GET("/seasons", h.GetSeasons)
	}
}

func (h *FilterHandler) GetOptions(c *gin.Context) {
	opts, err := h.recipes.GetFilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func (h *FilterHandler) GetTags(c *gin.Context) {
	tags, err := h.recipes.GetPopularTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *FilterHandler) GetTimeRanges(c *gin.Context) {
	c.JSON(http.StatusOK, []RangeOption{
		{Label: "Quick (0-15 min)", Value: "0-15"},
		{Label: "Fast (15-30 min)", Value: "15-30"},
		{Label: "Medium (30-60 min)", Value: "30-60"},
		{Label: "Long (60+ min)", Value: "60-999"},
	})
}

func (h *FilterHandler) GetCalorieRanges(c *gin.Context) {
	c.JSON(http.StatusOK, []RangeOption{
		{Label: "Low (0-200 cal)", Value: "0-200"},
		{Label: "Light (200-400 cal)", Value: "200-400"},
		{Label: "Medium (400-600 cal)", Value: "400-600"},
		{Label: "High (600-800 cal)", Value: "600-800"},
		{Label: "Very High (800+ cal)", Value: "800-9999"},
	})
}

func (h *FilterHandler) GetSeasons(c *gin.Context) {
	c.JSON(http.StatusOK, []SeasonOption{
		{Value: "spring", Label: "Spring", Months: []int{2, 3, 4}},
		{Value: "summer", Label: "Summer", Months: []int{5, 6, 7}},
		{Value: "fall", Label: "Fall", Months: []int{8, 9, 10}},
		{Value: "winter", Label: "Winter", Months: []int{11, 0, 1}},
		{Value: "all-year", Label: "All Year", Months: []int{}},
	})
}
