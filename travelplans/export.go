package travelplans

import (
	"bytes"
	"fmt"
	"net/http"
	"os"

	"tripmate/apperrors"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func shareURL(planID string) string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:4000"
	}
	return fmt.Sprintf("%s/travelplans/%s", base, planID)
}

// ShareQR serves a PNG QR code pointing at the plan's public page.
func (h *Handler) ShareQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plan, err := h.Service.GetPlan(r.Context(), ps.ByName("id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(shareURL(plan.PlanID), qrcode.Medium, 256)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(qrPNG)
}

// TripSummaryPDF renders a one-page printable summary of the plan with its
// share QR code embedded.
func (h *Handler) TripSummaryPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plan, err := h.Service.GetPlan(r.Context(), ps.ByName("id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(shareURL(plan.PlanID), qrcode.Medium, 256)
	if err != nil {
		apperrors.Write(w, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Trip Summary")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Destination: %s", plan.Destination))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("From: %s", plan.StartDateTime.Format("2006-01-02 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("To: %s", plan.EndDateTime.Format("2006-01-02 15:04")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Travel type: %s", plan.TravelType))
	pdf.Ln(8)
	if plan.BudgetRange != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Budget: %s", plan.BudgetRange))
		pdf.Ln(8)
	}
	if plan.Itinerary != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 10, "Itinerary")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, plan.Itinerary, "", "L", false)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		apperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=trip-"+plan.PlanID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
