// Package promptpay builds EMVCo tag-length-value payloads for Thai
// PromptPay QR payments and renders them as PNG images.
package promptpay

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidMerchantID = errors.New("invalid promptpay id format")
)

// Field IDs of the top-level payload.
const (
	fidPayloadFormat       = "00"
	fidPointOfInitiation   = "01"
	fidMerchantInfo        = "29"
	fidTransactionCurrency = "53"
	fidTransactionAmount   = "54"
	fidCountryCode         = "58"
	fidCRC                 = "63"
)

// Sub-field IDs nested inside the merchant info field.
const (
	subFIDApplicationID = "00"
	subFIDBillerID      = "01"
)

const (
	payloadFormat      = "01"
	staticInitiation   = "11" // 11 = static QR, 12 = dynamic QR
	promptPayAID       = "A000000677010111"
	currencyTHB        = "764"
	countryTH          = "TH"
	qrImageSize        = 512
)

// BuildPayload returns the full TLV payload for a static PromptPay QR,
// terminated by its CRC-16/CCITT checksum.
func BuildPayload(merchantID string, amount float64) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	billerID, err := FormatBillerID(merchantID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(buildField(fidPayloadFormat, payloadFormat))
	b.WriteString(buildField(fidPointOfInitiation, staticInitiation))

	merchantInfo := buildField(subFIDApplicationID, promptPayAID) +
		buildField(subFIDBillerID, billerID)
	b.WriteString(buildField(fidMerchantInfo, merchantInfo))

	b.WriteString(buildField(fidTransactionCurrency, currencyTHB))
	b.WriteString(buildField(fidTransactionAmount, fmt.Sprintf("%.2f", amount)))
	b.WriteString(buildField(fidCountryCode, countryTH))

	// The CRC covers everything written so far plus its own tag+length.
	b.WriteString(fidCRC + "04")
	payload := b.String()
	return payload + ChecksumCRC16(payload), nil
}

// QRCodePNG renders the payload at error-correction level comparable to
// ECC Q so the printed code survives partial obstruction.
func QRCodePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.High, qrImageSize)
}

func buildField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// FormatBillerID normalizes a merchant identifier into the 13-digit biller
// id embedded in the payload. A 10-digit mobile number becomes 0066 plus
// the number without its leading digit; a 13-digit national/tax id passes
// through unchanged.
func FormatBillerID(merchantID string) (string, error) {
	var digits strings.Builder
	for _, r := range merchantID {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch len(cleaned) {
	case 10:
		return "0066" + cleaned[1:], nil
	case 13:
		return cleaned, nil
	default:
		return "", ErrInvalidMerchantID
	}
}

// ChecksumCRC16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF, no
// reflection, no final xor) over the payload bytes and returns it as four
// uppercase hex digits.
func ChecksumCRC16(data string) string {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
