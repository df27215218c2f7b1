package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/outreach/pkg/campaign"
	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/telephony"
)

func newCampaignHandler(t *testing.T) *CampaignHandler {
	t.Helper()
	log := logger.Default()
	activity := crm.NewActivityLog(nil, log)
	svc := campaign.NewService(
		telephony.NewSimulatedProvider(log),
		crm.NewSimulatedClient(activity),
		nil,
		nil,
		nil,
		campaign.Config{Pacing: campaign.Pacing{Unit: time.Millisecond}},
		log,
	)
	return NewCampaignHandler(svc)
}

func multipartCSV(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCampaignHandler_LoadCSV(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	body, contentType := multipartCSV(t, "Name,Phone\nJane Doe,+12065550100\n")
	req := httptest.NewRequest(http.MethodPost, "/api/campaign/load", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LoadCSV(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestCampaignHandler_LoadCSVMissingFile(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/campaign/load", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LoadCSV(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignHandler_LoadCSVMalformed(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	body, contentType := multipartCSV(t, "Name\n\"broken")
	req := httptest.NewRequest(http.MethodPost, "/api/campaign/load", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LoadCSV(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignHandler_LoadFromCRM(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/campaign/load-crm",
		bytes.NewBufferString(`{"campaign_id":"cmp_001"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LoadFromCRM(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":5`)
}

func TestCampaignHandler_LoadFromCRMValidation(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/campaign/load-crm",
		bytes.NewBufferString(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LoadFromCRM(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignHandler_StatusAndControls(t *testing.T) {
	e := echo.New()
	h := newCampaignHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/campaign/status", nil)
	require.NoError(t, h.Status(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_running":false`)
	assert.Contains(t, rec.Body.String(), `"progress":"0/0"`)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/campaign/start", nil)
	require.NoError(t, h.Start(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/campaign/stop", nil)
	require.NoError(t, h.Stop(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
