package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	receivabledomain "github.com/bentoworks/shukin/internal/receivable/domain"
)

func (s *Server) ListUserReceivables(c *gin.Context) {
	items, err := s.receivableSvc.ListUserReceivables(c.Request.Context(), receivabledomain.ListRequest{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) ListCompanyReceivables(c *gin.Context) {
	items, err := s.receivableSvc.ListCompanyReceivables(c.Request.Context(), receivabledomain.ListRequest{
		Query: c.Query("q"),
		Sort:  c.Query("sort"),
		Order: c.Query("order"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
