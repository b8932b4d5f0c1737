package public

import (
	"errors"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// HandlePostback 广告主转化回调入口。
// GET/POST 共用，参数从查询串读取（广告网络的 postback 约定）。
func (h *Handler) HandlePostback(c *gin.Context) {
	input := service.PostbackInput{
		ClickID:              strings.TrimSpace(c.Query(constants.PostbackParamClickID)),
		Token:                strings.TrimSpace(c.Query(constants.PostbackParamToken)),
		ExternalConversionID: strings.TrimSpace(c.Query("external_conversion_id")),
		ReportedAmount:       strings.TrimSpace(c.Query("amount")),
		ClientIP:             c.ClientIP(),
	}
	if input.ClickID == "" {
		// 部分网络用 sub1 透传 click_id
		input.ClickID = strings.TrimSpace(c.Query(constants.PostbackParamSub1))
	}
	if input.ExternalConversionID == "" {
		input.ExternalConversionID = strings.TrimSpace(c.Query("conversion_id"))
	}

	result, err := h.PostbackService.HandleConversion(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCorrelation) {
			respondError(c, response.CodeBadRequest, "error.postback_correlation_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.postback_failed", err)
		return
	}

	response.Success(c, gin.H{
		"event_id":  result.Event.EventID,
		"amount":    result.Event.Amount,
		"duplicate": result.Duplicate,
	})
}
