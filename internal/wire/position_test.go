package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := VehiclePosition{
		VehicleID: "car_7",
		Latitude:  52.52,
		Longitude: 13.40,
		Speed:     12.5,
		Timestamp: 1700000000,
	}

	got, err := Decode(Encode(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodeMalformedIsProtocolError(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, VehiclePosition{}, got)
}
