// Package handler exposes the contact and note routes.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/recordbook/recordbook/internal/apperr"
	"github.com/recordbook/recordbook/internal/records"
	"github.com/recordbook/recordbook/internal/records/service"
	"github.com/recordbook/recordbook/pkg/response"
)

const (
	msgUpdated  = "record was successfully updated"
	msgDeleted  = "contact deleted successfully"
	msgNotFound = "Not Found"
)

// Register mounts every record route on r.
func Register(r gin.IRouter, svc *service.Service) {
	RegisterContactRoutes(r, svc)
	RegisterNoteRoutes(r, svc)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.InvalidField("id", "must be an integer")
	}
	return id, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.InvalidField(name, "must be an integer")
	}
	return n, nil
}

func queryOptional(c *gin.Context, name string) records.Optional[string] {
	if v, ok := c.GetQuery(name); ok {
		return records.Some(v)
	}
	return records.Optional[string]{}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.InvalidField("body", "must be a valid JSON object: "+err.Error())
	}
	return nil
}

func RegisterContactRoutes(r gin.IRouter, svc *service.Service) {
	r.POST("/contacts", func(c *gin.Context) {
		var in records.ContactInput
		if err := bindJSON(c, &in); err != nil {
			response.Error(c, err)
			return
		}
		out, err := svc.CreateContact(c.Request.Context(), in)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	r.GET("/contacts", func(c *gin.Context) {
		list, err := svc.ListContacts(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/contacts/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		out, err := svc.GetContact(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	// PATCH takes its fields from the query string; a parameter that is
	// present, even if empty, is applied.
	r.PATCH("/contacts/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		in := records.ContactPatchInput{
			Name:        queryOptional(c, "name"),
			Lastname:    queryOptional(c, "lastname"),
			Email:       queryOptional(c, "email"),
			Phone:       queryOptional(c, "phone"),
			BornDate:    queryOptional(c, "born_date"),
			Description: queryOptional(c, "description"),
		}
		if _, err := svc.UpdateContact(c.Request.Context(), id, in); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, http.StatusOK, msgUpdated)
	})

	r.DELETE("/contacts/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := svc.DeleteContact(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		response.Message(c, http.StatusOK, msgDeleted)
	})

	r.GET("/search", func(c *gin.Context) {
		q := records.SearchQuery{
			Name:     c.Query("name"),
			Lastname: c.Query("lastname"),
			Email:    c.Query("email"),
		}
		found, err := svc.SearchContact(c.Request.Context(), q)
		if err != nil {
			response.Error(c, err)
			return
		}
		if found == nil {
			response.Message(c, http.StatusOK, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, found)
	})

	r.GET("/birthday", func(c *gin.Context) {
		list, err := svc.UpcomingBirthdays(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}

func RegisterNoteRoutes(r gin.IRouter, svc *service.Service) {
	r.POST("/notes", func(c *gin.Context) {
		var in records.NoteInput
		if err := bindJSON(c, &in); err != nil {
			response.Error(c, err)
			return
		}
		out, err := svc.CreateNote(c.Request.Context(), in)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	r.GET("/notes", func(c *gin.Context) {
		skip, err := queryInt(c, "skip")
		if err != nil {
			response.Error(c, err)
			return
		}
		limit, err := queryInt(c, "limit")
		if err != nil {
			response.Error(c, err)
			return
		}
		list, err := svc.ListNotes(c.Request.Context(), skip, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/notes/:id", func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		out, err := svc.GetNote(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}
