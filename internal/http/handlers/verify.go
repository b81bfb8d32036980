package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/verify/:scanCode
//
// Operator-side verification: look up a ticket by its opaque scan code.
// The operator gets the display projection only and no mutation rights;
// lazy expiry still applies so a stale PENDING ticket shows as EXPIRED.
func VerifyTicket(c *gin.Context) {
	ticket, err := ticketService(c).Verify(c.Param("scanCode"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": buildTicketView(ticket)})
}
