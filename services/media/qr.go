package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// UPIPayload builds the upi:// deep link encoded into payment QRs.
func UPIPayload(upiID, payee string, amount int, bookingID string) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=INR&tn=%s",
		upiID,
		url.PathEscape(payee),
		strconv.Itoa(amount),
		url.PathEscape("Booking "+bookingID),
	)
}

// UPIQRGenerator encodes a UPI payment link as a PNG and hands it to an
// Uploader.
type UPIQRGenerator struct {
	upiID    string
	payee    string
	uploader Uploader
}

func NewUPIQRGenerator(upiID, payee string, uploader Uploader) *UPIQRGenerator {
	return &UPIQRGenerator{upiID: upiID, payee: payee, uploader: uploader}
}

func (g *UPIQRGenerator) GenerateQR(ctx context.Context, bookingID string, amount int, _ string) (string, error) {
	if bookingID == "" {
		return "", errors.New("qr: booking id is required")
	}
	if amount <= 0 {
		return "", fmt.Errorf("qr: invalid amount %d for booking %s", amount, bookingID)
	}
	png, err := qrcode.Encode(UPIPayload(g.upiID, g.payee, amount, bookingID), qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("qr: encode booking %s: %w", bookingID, err)
	}
	ref, err := g.uploader.Upload(ctx, "booking_"+bookingID, png)
	if err != nil {
		return "", fmt.Errorf("qr: upload booking %s: %w", bookingID, err)
	}
	return ref, nil
}
