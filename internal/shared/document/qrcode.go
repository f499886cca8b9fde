// Package document renders challans, QR codes and job order exports.
package document

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRPayload is the JSON encoded into a job order QR code.
type QRPayload struct {
	JobOrderNumber string `json:"jobOrderNumber"`
	VendorID       string `json:"vendorId"`
	Type           string `json:"type"`
}

// JobOrderQR returns the PNG QR code identifying a job order.
func JobOrderQR(orderNumber, vendorID string) ([]byte, error) {
	payload, err := json.Marshal(QRPayload{JobOrderNumber: orderNumber, VendorID: vendorID, Type: "job-order"})
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// DataURL embeds a PNG as a data URL.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURL reverses DataURL.
func DecodeDataURL(s string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return nil, fmt.Errorf("not a png data url")
	}
	return base64.StdEncoding.DecodeString(s[len(prefix):])
}
