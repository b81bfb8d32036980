package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"farebox/internal/domain"
	"farebox/internal/domain/models"
	"farebox/internal/http/middleware"
	"farebox/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/phpdave11/gofpdf"
)

// GET /api/tickets/:id/eticket
func GetTicketPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := ticketService(c).Get(middleware.SubjectID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if ticket.Status != models.TicketConfirmed {
		RespondDomainError(c, domain.ConflictError{Resource: "ticket", Msg: "e-ticket is only available for confirmed tickets"})
		return
	}

	data, filename, err := buildETicketPDF(ticket, buildTicketView(ticket))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

func buildETicketPDF(t models.Ticket, v TicketView) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUS E-TICKET")
	pdf.Ln(12)

	dest := "-"
	if v.DestinationHalt != nil {
		dest = *v.DestinationHalt
	}
	issued := "-"
	if t.IssuedAt != nil {
		issued = t.IssuedAt.Format("2006-01-02 15:04")
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Route        : %s %s", v.RouteNumber, v.RouteName),
		fmt.Sprintf("Bus          : %s (%s)", v.BusCode, v.BusRegistration),
		fmt.Sprintf("From         : %s", t.Boarding.Name),
		fmt.Sprintf("To           : %s", dest),
		fmt.Sprintf("Passengers   : %d adult, %d child", t.AdultCount, t.ChildCount),
		fmt.Sprintf("Base fare    : %s", utils.FormatMinorUnits(t.BaseFare)),
		fmt.Sprintf("Total fare   : %s", utils.FormatMinorUnits(t.TotalFare)),
		fmt.Sprintf("Issued       : %s", issued),
		fmt.Sprintf("Ticket code  : %s", t.ScanCode),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show the ticket code to the conductor for verification.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%d.pdf", t.ID)
	return buf.Bytes(), filename, nil
}
