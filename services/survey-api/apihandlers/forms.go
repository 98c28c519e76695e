package apihandlers

import (
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	mw "github.com/friendlylabs/surveyr-app-sub000/pkg/apihelpers/middlewares"
	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
	jwthandling "github.com/friendlylabs/surveyr-app-sub000/pkg/jwt-handling"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveydef"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/surveyengine"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

func (h *HttpEndpoints) AddRespondentAPI(rg *gin.RouterGroup) {
	formsGroup := rg.Group("/forms")
	formsGroup.Use(mw.GetAndValidateRespondentJWT(h.tokenSignKey))
	formsGroup.Use(mw.IsInstanceIDInJWTAllowed(h.allowedInstanceIDs))
	{
		formsGroup.GET("/:formKey", h.getCurrentFormVersion)
		formsGroup.POST("/:formKey/submissions", mw.RequirePayload(), h.submitForm)
	}
}

// tokenAllowsFormAccess checks the form key against the keys granted by the
// token. An empty list grants access to every form of the instance.
func tokenAllowsFormAccess(token *jwthandling.RespondentClaims, formKey string) bool {
	if len(token.FormKeys) == 0 {
		return true
	}
	return utils.ContainsString(token.FormKeys, formKey)
}

func (h *HttpEndpoints) getCurrentFormVersion(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.RespondentClaims)

	formKey := c.Param("formKey")
	if !tokenAllowsFormAccess(token, formKey) {
		slog.Warn("form access not allowed by token", slog.String("instanceID", token.InstanceID), slog.String("respondentID", token.Subject), slog.String("formKey", formKey))
		c.JSON(http.StatusForbidden, gin.H{"error": "form access not allowed"})
		return
	}

	form, err := h.surveyDBConn.GetCurrentFormVersion(token.InstanceID, formKey)
	if err != nil {
		slog.Warn("form not found", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"formKey":    form.FormKey,
		"versionId":  form.VersionID,
		"definition": json.RawMessage(form.Definition),
	})
}

func (h *HttpEndpoints) submitForm(c *gin.Context) {
	token := c.MustGet("validatedToken").(*jwthandling.RespondentClaims)

	formKey := c.Param("formKey")
	if !tokenAllowsFormAccess(token, formKey) {
		slog.Warn("form access not allowed by token", slog.String("instanceID", token.InstanceID), slog.String("respondentID", token.Subject), slog.String("formKey", formKey))
		c.JSON(http.StatusForbidden, gin.H{"error": "form access not allowed"})
		return
	}

	var req struct {
		VersionID string                 `json:"versionId"`
		Answers   map[string]interface{} `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var form surveyDB.FormInfo
	var err error
	if req.VersionID != "" {
		form, err = h.surveyDBConn.GetFormVersion(token.InstanceID, formKey, req.VersionID)
	} else {
		form, err = h.surveyDBConn.GetCurrentFormVersion(token.InstanceID, formKey)
	}
	if err != nil {
		slog.Warn("form not found", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}

	def, err := surveydef.Parse(form.Definition)
	if err != nil {
		slog.Error("stored form definition could not be parsed", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.String("versionID", form.VersionID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "form definition could not be parsed"})
		return
	}

	state := surveyengine.NewStateWithAnswers(def, req.Answers)
	result := state.ValidateAll()
	if !result.IsValid {
		slog.Debug("submission rejected", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.Int("errorCount", len(result.Errors)))
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "validationErrors": result.Errors})
		return
	}

	submission, err := h.surveyDBConn.SaveSubmission(token.InstanceID, surveyDB.Submission{
		FormKey:      formKey,
		VersionID:    form.VersionID,
		RespondentID: token.Subject,
		Answers:      req.Answers,
	})
	if err != nil {
		slog.Error("error saving submission", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "error saving submission"})
		return
	}

	slog.Info("submission saved", slog.String("instanceID", token.InstanceID), slog.String("formKey", formKey), slog.String("submissionID", submission.SubmissionID))
	c.JSON(http.StatusOK, gin.H{"submissionId": submission.SubmissionID})
}
