// Package server hosts the admin router of the distribution services.
package server

import (
	"net/http"
	"strconv"

	"github.com/Luismorlan/feedcast/dispatcher"
	"github.com/Luismorlan/feedcast/model"
	"github.com/Luismorlan/feedcast/publisher"
	"github.com/Luismorlan/feedcast/store"
	Logger "github.com/Luismorlan/feedcast/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

type dispatchResponse struct {
	StatusID        int64                  `json:"status_id"`
	SelfDelivered   bool                   `json:"self_delivered"`
	Enqueued        map[model.FeedKind]int `json:"enqueued"`
	AntennasMatched int                    `json:"antennas_matched"`
	Notified        int                    `json:"notified"`
	Channels        []string               `json:"channels"`
}

// NewRouter returns the admin router. Besides the health check it lets an
// operator rerun the distribution of one status.
func NewRouter(serviceName string, statuses publisher.StatusFinder, d publisher.Distributor) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gintrace.Middleware(serviceName))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.POST("/statuses/:id/dispatch", DispatchHandler(statuses, d))
	return router
}

// DispatchHandler redistributes the status named by the :id path parameter.
// Pass edit=true to distribute it as an edit.
func DispatchHandler(statuses publisher.StatusFinder, d publisher.Distributor) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid status id"})
			return
		}
		edit, _ := strconv.ParseBool(c.DefaultQuery("edit", "false"))

		ctx := c.Request.Context()
		status, err := statuses.FindStatus(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "status not found"})
			return
		}
		if err != nil {
			Logger.Log.WithError(err).Errorf("fail to load status %d", id)
			c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
			return
		}

		res, err := d.Dispatch(ctx, status, dispatcher.Options{IsEdit: edit})
		switch {
		case errors.Is(err, dispatcher.ErrStatusNotReady):
			c.JSON(http.StatusConflict, gin.H{"msg": err.Error()})
			return
		case errors.Is(err, dispatcher.ErrInvalidStatus):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"msg": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": err.Error()})
			return
		}

		c.JSON(http.StatusOK, dispatchResponse{
			StatusID:        id,
			SelfDelivered:   res.SelfDelivered,
			Enqueued:        res.Enqueued,
			AntennasMatched: res.AntennasMatched,
			Notified:        res.Notified,
			Channels:        res.Channels,
		})
	}
}
