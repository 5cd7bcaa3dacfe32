// Package voucher renders booking vouchers: a one-page PDF with the booking
// details and a QR code carrying a signed booking reference that staff can
// verify offline.
package voucher

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/utafrali/TravelGo/internal/pricing"
	"github.com/utafrali/TravelGo/pkg/slug"
)

// ErrBadSignature is returned by Verify for tampered or foreign payloads.
var ErrBadSignature = errors.New("voucher signature mismatch")

// Signer signs and verifies QR payloads of the form
// "booking|package|date|signature".
type Signer struct {
	secret []byte
}

// NewSigner creates a signer keyed with secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Payload returns the signed QR payload for a booking.
func (s *Signer) Payload(bookingID, packageID, date string) string {
	data := strings.Join([]string{bookingID, packageID, date}, "|")
	return data + "|" + s.sign(data)
}

// Reference is the booking a verified payload points at.
type Reference struct {
	BookingID string
	PackageID string
	Date      string
}

// Verify checks a payload's signature and returns the reference it carries.
func (s *Signer) Verify(payload string) (Reference, error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return Reference{}, ErrBadSignature
	}
	data := strings.Join(parts[:3], "|")
	if !hmac.Equal([]byte(parts[3]), []byte(s.sign(data))) {
		return Reference{}, ErrBadSignature
	}
	return Reference{BookingID: parts[0], PackageID: parts[1], Date: parts[2]}, nil
}

// Voucher is everything printed on a voucher.
type Voucher struct {
	BookingID    string
	PackageID    string
	PackageTitle string
	Destination  string
	BuyerName    string
	SelectedDate string
	Status       string
	Quote        pricing.Quote
	IssuedAt     time.Time
}

// Filename is the download name of a voucher.
func Filename(v Voucher) string {
	id := v.BookingID
	if len(id) > 8 {
		id = id[:8]
	}
	name := slug.Generate(v.PackageTitle)
	if name == "" {
		return "voucher-" + id + ".pdf"
	}
	return "voucher-" + name + "-" + id + ".pdf"
}

// Render produces the voucher PDF.
func Render(v Voucher, signer *Signer) ([]byte, error) {
	qrPNG, err := qrcode.Encode(signer.Payload(v.BookingID, v.PackageID, v.SelectedDate), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode voucher qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking voucher "+v.BookingID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Booking Voucher")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.MultiCell(120, 7, tr(v.PackageTitle), "", "L", false)
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Booking", v.BookingID},
		{"Traveler", v.BuyerName},
		{"Destination", v.Destination},
		{"Travel date", v.SelectedDate},
		{"Travelers", fmt.Sprintf("%d", v.Quote.Travelers)},
		{"Status", v.Status},
		{"Price per traveler", fmt.Sprintf("%.2f", v.Quote.DiscountedUnit)},
		{"Total", fmt.Sprintf("%.2f", v.Quote.DiscountedTotal)},
	}
	if v.Quote.Savings > 0 {
		rows = append(rows, [2]string{"You saved", fmt.Sprintf("%.2f", v.Quote.Savings)})
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(80, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Issued "+v.IssuedAt.UTC().Format(time.RFC1123)+". Present this voucher at check-in.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher pdf: %w", err)
	}
	return buf.Bytes(), nil
}
