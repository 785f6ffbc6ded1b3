package booking_test

import (
	"testing"

	"github.com/mkershaw/bookpilot/pkg/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestDefaultsBedrooms(t *testing.T) {
	req, err := booking.ParseRequest([]byte(`{"carpet_cleaning": true}`))
	require.NoError(t, err)
	assert.Equal(t, 4, req.Bedrooms)
}

func TestParseRequestQuantityCoercion(t *testing.T) {
	req, err := booking.ParseRequest([]byte(`{
		"upholstery": true,
		"couch": "2",
		"recliner": 1,
		"love_seat": "not a number",
		"small_sectional": null,
		"medium_sectional": ""
	}`))
	require.NoError(t, err)

	assert.Equal(t, 2, int(req.Couch))
	assert.Equal(t, 1, int(req.Recliner))
	assert.Equal(t, 0, int(req.LoveSeat))
	assert.Equal(t, 0, int(req.SmallSectional))
	assert.Equal(t, 0, int(req.MediumSectional))

	// Only the parseable, positive quantities become tasks.
	queue := booking.BuildQueue(req)
	require.Len(t, queue, 2)
	assert.Equal(t, "couch", queue[0].ItemKey)
	assert.Equal(t, "recliner", queue[1].ItemKey)
}

func TestParseRequestRejectsMalformedJSON(t *testing.T) {
	_, err := booking.ParseRequest([]byte(`{"carpet_cleaning":`))
	assert.Error(t, err)
}

func TestUpholsteryQuantityUnknownKey(t *testing.T) {
	req := &booking.BookingRequest{Couch: 3}
	assert.Equal(t, 3, req.UpholsteryQuantity("couch"))
	assert.Equal(t, 0, req.UpholsteryQuantity("chaise_lounge"))
}
