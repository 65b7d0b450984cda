package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastoria/backend/internal/service"
)

// respondError maps a service failure to its HTTP status. Unclassified
// errors are treated as internal and their detail kept out of the body.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	switch kind {
	case service.KindInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"code": string(kind), "error": err.Error()})
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"code": string(kind), "error": err.Error()})
	case service.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"code": string(kind), "error": err.Error()})
	case service.KindUnavailable:
		log.Printf("[API] backend failure: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": string(kind), "error": "service temporarily unavailable"})
	default:
		log.Printf("[API] unclassified failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
