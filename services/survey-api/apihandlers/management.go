package apihandlers

import (
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/friendlylabs/surveyr-app-sub000/pkg/apihelpers"
	mw "github.com/friendlylabs/surveyr-app-sub000/pkg/apihelpers/middlewares"
	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
	jwthandling "github.com/friendlylabs/surveyr-app-sub000/pkg/jwt-handling"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddManagementAPI(rg *gin.RouterGroup) {
	managementGroup := rg.Group("/management")
	managementGroup.Use(mw.HasValidAPIKey(h.managementAPIKeys))
	{
		managementGroup.POST("/respondent-tokens", mw.RequirePayload(), h.issueRespondentToken)
		managementGroup.POST("/form-definitions/check", mw.RequirePayload(), h.checkFormDefinition)
	}

	formsGroup := managementGroup.Group("/forms/:formKey")
	{
		formsGroup.POST("/versions", mw.RequirePayload(), h.saveFormVersion)
		formsGroup.GET("/versions", h.getFormVersions)
		formsGroup.GET("/versions/:versionID", h.getFormVersion)
		formsGroup.DELETE("/versions", h.deleteFormVersions)
		formsGroup.POST("/unpublish", h.unpublishForm)
		formsGroup.GET("/submissions", h.getSubmissions)
		formsGroup.DELETE("/submissions", h.deleteSubmissions)
	}
}

func (h *HttpEndpoints) issueRespondentToken(c *gin.Context) {
	var req struct {
		InstanceID   string            `json:"instanceId"`
		RespondentID string            `json:"respondentId"`
		FormKeys     []string          `json:"formKeys"`
		Payload      map[string]string `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RespondentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "respondentId is required"})
		return
	}
	if !utils.ContainsString(h.allowedInstanceIDs, req.InstanceID) {
		slog.Warn("instanceID not allowed", slog.String("instanceID", req.InstanceID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "instanceId not allowed"})
		return
	}

	token, err := jwthandling.GenerateNewRespondentToken(
		h.tokenExpiresIn,
		req.RespondentID,
		req.InstanceID,
		req.FormKeys,
		req.Payload,
		h.tokenSignKey,
	)
	if err != nil {
		slog.Error("error generating respondent token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error generating token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": token,
		"expiresIn":   int64(h.tokenExpiresIn / time.Second),
	})
}

// checkFormDefinition parses a definition without storing it, so editors can
// surface structural problems before publishing.
func (h *HttpEndpoints) checkFormDefinition(c *gin.Context) {
	var req struct {
		Definition json.RawMessage `json:"definition"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, err := surveydef.Parse([]byte(req.Definition))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"pageCount": len(def.Pages),
	})
}

func (h *HttpEndpoints) saveFormVersion(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	if !utils.IsURLSafe(formKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form key"})
		return
	}

	var req struct {
		Name       string            `json:"name"`
		Definition json.RawMessage   `json:"definition"`
		Metadata   map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject definitions the interpreter cannot work with
	if _, err := surveydef.Parse([]byte(req.Definition)); err != nil {
		slog.Warn("invalid form definition", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	oldVersions, err := h.surveyDBConn.GetFormVersions(instanceID, formKey)
	if err != nil {
		slog.Error("error fetching form versions", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching form versions"})
		return
	}
	existingVersionIDs := make([]string, len(oldVersions))
	for i, v := range oldVersions {
		existingVersionIDs[i] = v.VersionID
	}

	form := surveyDB.FormInfo{
		FormKey:    formKey,
		Name:       req.Name,
		Definition: string(req.Definition),
		VersionID:  utils.GenerateFormVersionID(existingVersionIDs),
		Published:  time.Now().Unix(),
		Metadata:   req.Metadata,
	}

	if err := h.surveyDBConn.SaveFormVersion(instanceID, form); err != nil {
		slog.Error("error saving form version", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving form version"})
		return
	}

	slog.Info("form version saved", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("versionID", form.VersionID))
	c.JSON(http.StatusOK, gin.H{"formKey": formKey, "versionId": form.VersionID})
}

func (h *HttpEndpoints) getFormVersions(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	versions, err := h.surveyDBConn.GetFormVersions(instanceID, formKey)
	if err != nil {
		slog.Error("error fetching form versions", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching form versions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

func (h *HttpEndpoints) getFormVersion(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	versionID := c.Param("versionID")

	form, err := h.surveyDBConn.GetFormVersion(instanceID, formKey, versionID)
	if err != nil {
		slog.Warn("form version not found", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("versionID", versionID))
		c.JSON(http.StatusNotFound, gin.H{"error": "form version not found"})
		return
	}

	c.JSON(http.StatusOK, form)
}

func (h *HttpEndpoints) deleteFormVersions(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	count, err := h.surveyDBConn.DeleteFormVersions(instanceID, formKey)
	if err != nil {
		slog.Error("error deleting form versions", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error deleting form versions"})
		return
	}

	slog.Info("form versions deleted", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.Int64("count", count))
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *HttpEndpoints) unpublishForm(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	if err := h.surveyDBConn.UnpublishForm(instanceID, formKey); err != nil {
		slog.Error("error unpublishing form", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error unpublishing form"})
		return
	}

	slog.Info("form unpublished", slog.String("instanceID", instanceID), slog.String("formKey", formKey))
	c.JSON(http.StatusOK, gin.H{"message": "form unpublished"})
}

func (h *HttpEndpoints) getSubmissions(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")

	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		slog.Error("error parsing query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := query.Filter
	if filter == nil {
		filter = bson.M{}
	}
	filter["formKey"] = formKey

	submissions, paginationInfo, err := h.surveyDBConn.GetSubmissions(instanceID, filter, query.Sort, query.Page, query.Limit)
	if err != nil {
		slog.Error("error fetching submissions", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error fetching submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"pagination":  paginationInfo,
	})
}

func (h *HttpEndpoints) deleteSubmissions(c *gin.Context) {
	instanceID, err := h.getInstanceID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	formKey := c.Param("formKey")
	count, err := h.surveyDBConn.DeleteSubmissions(instanceID, formKey)
	if err != nil {
		slog.Error("error deleting submissions", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error deleting submissions"})
		return
	}

	slog.Info("submissions deleted", slog.String("instanceID", instanceID), slog.String("formKey", formKey), slog.Int64("count", count))
	c.JSON(http.StatusOK, gin.H{"count": count})
}
