package ipos_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
	"github.com/jrsteele09/ipo-auth-server/ipos"
	"github.com/stretchr/testify/require"
)

func TestParseUpdate(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"companyName": "Renamed",
		"prizeBand": 99.5,
		"issueSize": "2000",
		"listingDate": "2024-05-01",
		"status": "Ongoing",
		"rhp": "https://evil"
	}`), &raw))

	u, err := ipos.ParseUpdate(raw)
	require.NoError(t, err)

	fields := u.Fields()
	require.Len(t, fields, 4)
	require.Equal(t, "Renamed", fields["companyName"])
	require.Equal(t, 99.5, fields["prizeBand"])
	require.Equal(t, 2000.0, fields["issueSize"])
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), fields["listingDate"])

	ipo := &ipos.IPO{Status: ipos.StatusComing, RHP: "https://example.com"}
	u.Apply(ipo)
	require.Equal(t, "Renamed", ipo.CompanyName)
	require.Equal(t, ipos.StatusComing, ipo.Status)
	require.Equal(t, "https://example.com", ipo.RHP)
}

func TestParseUpdate_Errors(t *testing.T) {
	_, err := ipos.ParseUpdate(nil)
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoUpdate, "No update data provided")

	_, err = ipos.ParseUpdate(map[string]any{"status": "Ongoing", "$set": map[string]any{}})
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoUpdate, "No valid fields provided for update")

	_, err = ipos.ParseUpdate(map[string]any{"prizeBand": true})
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonInvalidField, "Prize band must be a number!")

	_, err = ipos.ParseUpdate(map[string]any{"close": 12})
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonInvalidField, "Closing date must be a valid date!")

	_, err = ipos.ParseUpdate(map[string]any{"companyName": ""})
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonMissingField, "Company name is required!")
}

func TestParseUpdate_FirstInvalidFieldWins(t *testing.T) {
	raw := map[string]any{
		"listingDate": "soon",
		"issueSize":   "lots",
		"prizeBand":   "cheap",
		"companyName": "",
	}
	for i := 0; i < 20; i++ {
		_, err := ipos.ParseUpdate(raw)
		requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonMissingField, "Company name is required!")
	}

	delete(raw, "companyName")
	for i := 0; i < 20; i++ {
		_, err := ipos.ParseUpdate(raw)
		requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonInvalidField, "Prize band must be a number!")
	}
}
