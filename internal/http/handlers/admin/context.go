package admin

import (
	handlershared "github.com/orderflow-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getStaffID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextActorID, "staff_id_invalid", "staff_id_type_invalid")
}

func getStoreID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextStoreID, "store_id_invalid", "store_id_type_invalid")
}

// getStaffScope 读取员工与其门店
func getStaffScope(c *gin.Context) (uint, uint, bool) {
	staffID, ok := getStaffID(c)
	if !ok {
		return 0, 0, false
	}
	storeID, ok := getStoreID(c)
	if !ok {
		return 0, 0, false
	}
	return staffID, storeID, true
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func parsePage(c *gin.Context) (int, int) {
	return handlershared.ParsePage(c.Query("page"), c.Query("page_size"))
}
