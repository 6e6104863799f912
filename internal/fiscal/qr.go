package fiscal

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const qrURLTemplate = "https://www.afip.gob.ar/fe/qr/?p="

// qrPayload is the wire structure embedded in the approval QR code. The
// lifecycle manager stores only the resulting opaque URL.
type qrPayload struct {
	Version     int     `json:"ver"`
	Date        string  `json:"fecha"`
	CUIT        string  `json:"cuit"`
	PointOfSale int     `json:"ptoVta"`
	DocType     string  `json:"tipoCmp"`
	DocNumber   int64   `json:"nroCmp"`
	Amount      float64 `json:"importe"`
	Currency    string  `json:"moneda"`
	AuthCode    string  `json:"codAut"`
}

// BuildQRCodeData encodes the approved document reference into the fixed
// URL template used by verification apps.
func BuildQRCodeData(cuit string, pointOfSale int, docType string, number int64, total decimal.Decimal, cae string, date time.Time) (string, error) {
	payload := qrPayload{
		Version:     1,
		Date:        date.Format("2006-01-02"),
		CUIT:        cuit,
		PointOfSale: pointOfSale,
		DocType:     docType,
		DocNumber:   number,
		Amount:      total.InexactFloat64(),
		Currency:    "PES",
		AuthCode:    cae,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return qrURLTemplate + base64.StdEncoding.EncodeToString(raw), nil
}
