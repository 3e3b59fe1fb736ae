package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ombrelle/switchboard/internal/autoreply"
	"github.com/ombrelle/switchboard/internal/flow"
	"github.com/ombrelle/switchboard/internal/models"
	"github.com/ombrelle/switchboard/internal/store"
	"gorm.io/gorm"
)

// --- Customers ---

func handleCustomerList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := store.Customers(db)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customers": customers})
	}
}

func handleCustomerUpsert(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name       string `json:"name"`
			Email      string `json:"email"`
			CustomerID string `json:"customer_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		customer := models.Customer{
			Phone:      c.Param("phone"),
			Name:       req.Name,
			Email:      req.Email,
			CustomerID: req.CustomerID,
		}
		if err := store.UpsertCustomer(db, customer); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": customer})
	}
}

// --- Auto-reply rules ---

func handleRuleList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rules, err := store.Rules(db, c.Query("tag"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rules": rules})
	}
}

func handleRuleCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Tag   string `json:"tag"`
			Hours string `json:"hours"`
			Reply string `json:"reply"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		rule, err := store.CreateRule(db, req.Tag, req.Hours, req.Reply)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"rule": rule})
	}
}

func handleRuleDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid rule id"})
			return
		}
		if err := store.DeleteRule(db, uint(id)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

// handleRuleMatch is the operator's dry-run: which rule would fire for a tag
// at a given instant? "at" defaults to now and accepts RFC 3339.
func handleRuleMatch(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := c.Query("tag")
		if tag == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: tag is required"})
			return
		}

		instant := time.Now()
		if at := c.Query("at"); at != "" {
			parsed, err := time.Parse(time.RFC3339, at)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid at: " + err.Error()})
				return
			}
			instant = parsed
		}

		rules, err := store.Rules(db, tag)
		if err != nil {
			fail(c, err)
			return
		}

		rule := autoreply.Match(rules, tag, instant)
		if rule == nil {
			// No matching rule is a normal outcome, not an error.
			c.JSON(http.StatusOK, gin.H{"rule": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rule": rule})
	}
}

// --- Office hours ---

func handleOfficeHoursGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		oh, err := store.OfficeHoursFor(db, c.Param("tag"))
		if err != nil {
			fail(c, err)
			return
		}
		if oh == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "api: office hours not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"office_hours": oh, "open_now": autoreply.WithinOfficeHours(oh, time.Now())})
	}
}

func handleOfficeHoursSet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Hours       string `json:"hours"`
			ClosedReply string `json:"closed_reply"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		oh, err := store.SetOfficeHours(db, c.Param("tag"), req.Hours, req.ClosedReply)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"office_hours": oh})
	}
}

// --- Templates ---

func handleTemplateList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		templates, err := store.Templates(db, c.Query("department"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"templates": templates})
	}
}

func handleTemplateCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name       string `json:"name"`
			Department string `json:"department"`
			Body       string `json:"body"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		tmpl, err := store.CreateTemplate(db, req.Name, req.Department, req.Body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"template": tmpl})
	}
}

func handleTemplateDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid template id"})
			return
		}
		if err := store.DeleteTemplate(db, uint(id)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

// --- Flows ---

func handleFlowList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		flows, err := flow.List(db)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"flows": flows})
	}
}

func handleFlowCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		f, err := flow.Create(db, req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"flow": f})
	}
}

func handleFlowDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid flow id"})
			return
		}
		if err := flow.Delete(db, uint(id)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": id})
	}
}

func handleStepList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid flow id"})
			return
		}
		steps, err := flow.Steps(db, uint(id))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"steps": steps})
	}
}

func handleStepSave(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: invalid flow id"})
			return
		}

		var req struct {
			Steps []struct {
				Condition string `json:"condition"`
				Response  string `json:"response"`
			} `json:"steps"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}

		inputs := make([]flow.StepInput, len(req.Steps))
		for i, s := range req.Steps {
			inputs[i] = flow.StepInput{Condition: s.Condition, Response: s.Response}
		}

		steps, err := flow.SaveSteps(db, uint(id), inputs)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"steps": steps})
	}
}
