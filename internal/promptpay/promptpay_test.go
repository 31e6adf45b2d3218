package promptpay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPayloadGolden(t *testing.T) {
	payload, err := BuildPayload("0610816643", 100.00)
	require.NoError(t, err)
	require.Equal(t,
		"00020101021129370016A0000006770101110113006661081664353037645406100.005802TH63048A9F",
		payload)
}

func TestBuildPayloadStructure(t *testing.T) {
	payload, err := BuildPayload("0610816643", 99.5)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(payload, "000201"))
	require.Contains(t, payload, "010211")
	// Amount carries exactly two decimals with its own length.
	require.Contains(t, payload, "540599.50")
	require.Contains(t, payload, "5303764")
	require.Contains(t, payload, "5802TH")
	require.Equal(t, "096F", payload[len(payload)-4:])

	// The CRC is computed over everything up to and including "6304".
	require.Equal(t, ChecksumCRC16(payload[:len(payload)-4]), payload[len(payload)-4:])
}

func TestFormatBillerID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"mobile number", "0610816643", "0066610816643", false},
		{"mobile with dashes", "061-081-6643", "0066610816643", false},
		{"national id", "1234567890123", "1234567890123", false},
		{"too short", "12345", "", true},
		{"eleven digits", "06108166431", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatBillerID(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMerchantID)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuildPayloadRejectsBadAmount(t *testing.T) {
	for _, amount := range []float64{0, -1, -99.50} {
		_, err := BuildPayload("0610816643", amount)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestBuildPayloadRejectsBadMerchant(t *testing.T) {
	_, err := BuildPayload("nope", 10)
	require.ErrorIs(t, err, ErrInvalidMerchantID)
}

func TestChecksumCRC16(t *testing.T) {
	// CRC-16/CCITT-FALSE check value for "123456789".
	require.Equal(t, "29B1", ChecksumCRC16("123456789"))
}

func TestQRCodePNG(t *testing.T) {
	payload, err := BuildPayload("0610816643", 100.00)
	require.NoError(t, err)

	png, err := QRCodePNG(payload)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
