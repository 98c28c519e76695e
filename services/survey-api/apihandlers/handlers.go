package apihandlers

import (
	"errors"
	"net/http"
	"time"

	surveyDB "github.com/friendlylabs/surveyr-app-sub000/pkg/db/survey"
	"github.com/friendlylabs/surveyr-app-sub000/pkg/utils"
	"github.com/gin-gonic/gin"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	surveyDBConn       *surveyDB.SurveyDBService
	tokenSignKey       string
	tokenExpiresIn     time.Duration
	allowedInstanceIDs []string
	managementAPIKeys  []string
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	surveyDBConn *surveyDB.SurveyDBService,
	allowedInstanceIDs []string,
	managementAPIKeys []string,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:       tokenSignKey,
		tokenExpiresIn:     tokenExpiresIn,
		surveyDBConn:       surveyDBConn,
		allowedInstanceIDs: allowedInstanceIDs,
		managementAPIKeys:  managementAPIKeys,
	}
}

func (h *HttpEndpoints) getInstanceID(c *gin.Context) (string, error) {
	instanceID := c.DefaultQuery("instanceID", "")
	if instanceID == "" {
		return "", errors.New("instanceID is required")
	}
	if !utils.ContainsString(h.allowedInstanceIDs, instanceID) {
		return "", errors.New("instanceID not allowed")
	}
	return instanceID, nil
}
